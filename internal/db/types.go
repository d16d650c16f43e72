package db

import "time"

const schemaSQL = `CREATE TABLE IF NOT EXISTS session_snapshots (
	session_key TEXT PRIMARY KEY,
	content     BYTEA NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Snapshot is one row of session_snapshots.
type Snapshot struct {
	SessionKey string
	Content    []byte
	UpdatedAt  time.Time
}

// Expired reports whether the snapshot has been idle longer than ttl.
// A non-positive ttl never expires.
func (s *Snapshot) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
