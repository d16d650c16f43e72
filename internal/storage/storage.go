// Package storage provides the session-scoped snapshot stores that back the wizard state.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Storage holds one opaque snapshot per key. Save is a total overwrite.
type Storage interface {
	// Load returns the snapshot for key. found is false when no snapshot exists.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// KeyPrefix namespaces snapshot keys in shared backends.
const KeyPrefix = "cv_wizard:snapshot:"

// SnapshotKey returns the storage key of a session's snapshot.
func SnapshotKey(sessionID string) string {
	return KeyPrefix + sessionID
}

// Backend names a storage implementation selectable by configuration.
type Backend string

// Supported backends.
const (
	BackendMemory   Backend = "memory"
	BackendRedis    Backend = "redis"
	BackendPostgres Backend = "postgres"
)

// ParseBackend validates a backend name; the empty string selects memory.
func ParseBackend(name string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case "", BackendMemory:
		return BackendMemory, nil
	case BackendRedis:
		return BackendRedis, nil
	case BackendPostgres:
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unknown storage backend: %q", name)
	}
}
