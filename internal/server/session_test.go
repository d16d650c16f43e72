package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-wizard/internal/config"
)

func newTestSessionService() *SessionService {
	return NewSessionService(&config.SessionConfig{Secret: "test-secret-0123456789", ExpirationHours: 2})
}

func TestSessionService_RoundTrip(t *testing.T) {
	svc := newTestSessionService()
	id := uuid.New()

	token, err := svc.GenerateToken(id)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.GetSessionID())
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, time.Minute)
	assert.Equal(t, 2*time.Hour, svc.TTL())
}

func TestSessionService_Rejects(t *testing.T) {
	svc := newTestSessionService()
	other := NewSessionService(&config.SessionConfig{Secret: "another-secret-9876543210", ExpirationHours: 2})

	foreign, err := other.GenerateToken(uuid.New())
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		SessionID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret-0123456789"))
	require.NoError(t, err)

	noSession := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noSessionToken, err := noSession.SignedString([]byte("test-secret-0123456789"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "empty", token: "", wantErr: "empty"},
		{name: "malformed", token: "a.b", wantErr: "malformed"},
		{name: "wrong secret", token: foreign, wantErr: "signature"},
		{name: "expired", token: expiredToken, wantErr: "expired"},
		{name: "no session", token: noSessionToken, wantErr: "no session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSessionService_AsTokenValidator(t *testing.T) {
	svc := newTestSessionService()
	id := uuid.New()
	token, err := svc.GenerateToken(id)
	require.NoError(t, err)

	claims, err := svc.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.GetSessionID())

	_, err = svc.AsTokenValidator().ValidateToken("nope")
	assert.Error(t, err)
}
