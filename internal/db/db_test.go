package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Expired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		updated time.Time
		ttl     time.Duration
		want    bool
	}{
		{"fresh", now.Add(-time.Minute), time.Hour, false},
		{"idle past ttl", now.Add(-2 * time.Hour), time.Hour, true},
		{"no ttl", now.Add(-1000 * time.Hour), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Snapshot{UpdatedAt: tt.updated}
			assert.Equal(t, tt.want, s.Expired(tt.ttl, now))
		})
	}
}

func TestSchemaSQL_DefinesSnapshotTable(t *testing.T) {
	assert.Contains(t, schemaSQL, "session_snapshots")
	assert.Contains(t, schemaSQL, "session_key TEXT PRIMARY KEY")
}
