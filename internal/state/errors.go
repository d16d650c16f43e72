package state

import (
	"errors"
	"fmt"
)

// ErrDiscarded is returned by mutations of a store whose session was deleted.
var ErrDiscarded = errors.New("session was deleted")

// PersistError reports a failed write to or read from snapshot storage. The
// in-memory state has still been updated when it is returned from a mutation.
type PersistError struct {
	Op    string
	Key   string
	Cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("snapshot %s failed for %s: %v", e.Op, e.Key, e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

// SnapshotError reports a snapshot that fails the snapshot schema, either
// when restored or before it would be written.
type SnapshotError struct {
	Key   string
	Cause error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("invalid snapshot %s: %v", e.Key, e.Cause)
}

func (e *SnapshotError) Unwrap() error {
	return e.Cause
}

// ScopeError reports an unknown reset scope.
type ScopeError struct {
	Scope string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("unknown reset scope: %q", e.Scope)
}
