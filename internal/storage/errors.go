package storage

import (
	"errors"
	"fmt"
)

// ErrTampered is returned when a sealed snapshot fails authentication.
var ErrTampered = errors.New("snapshot failed authentication")

// Error wraps a backend failure with the operation and key involved.
type Error struct {
	Op      string
	Key     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "operation failed"
	}
	if e.Key != "" {
		msg = fmt.Sprintf("%s (key %s)", msg, e.Key)
	}
	if e.Cause != nil {
		return fmt.Sprintf("storage %s: %s: %v", e.Op, msg, e.Cause)
	}
	return fmt.Sprintf("storage %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
