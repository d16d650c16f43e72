package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionConfig_DefaultValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret-key-0123")
	t.Setenv("SESSION_EXPIRATION_HOURS", "")

	cfg, err := NewSessionConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key-0123", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
}

func TestNewSessionConfig_CustomExpiration(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret-key-0123")
	t.Setenv("SESSION_EXPIRATION_HOURS", "48")

	cfg, err := NewSessionConfig()
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.ExpirationHours)
}

func TestNewSessionConfig_Errors(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		wantErr    string
	}{
		{"missing secret", "", "", "SESSION_SECRET is required"},
		{"short secret", "short", "", "at least 16 characters"},
		{"bad expiration", "test-secret-key-0123", "soon", "invalid SESSION_EXPIRATION_HOURS"},
		{"zero expiration", "test-secret-key-0123", "0", "at least 1 hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", tt.secret)
			t.Setenv("SESSION_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewSessionConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
