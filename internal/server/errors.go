// Package server provides the HTTP API of the CV wizard.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-wizard/internal/entries"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/photo"
	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/types"
	"github.com/jonathan/cv-wizard/internal/wizard"
)

// ErrSessionNotFound indicates the session has no stored snapshot
type ErrSessionNotFound struct {
	SessionID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound     *ErrSessionNotFound
		invalid      *ErrValidation
		fieldErrs    validator.ValidationErrors
		unitMissing  *entries.UnitNotFoundError
		transition   *wizard.TransitionError
		scope        *state.ScopeError
		snapshot     *state.SnapshotError
		exportFailed *export.ExportError
		badType      *photo.UnsupportedTypeError
		tooLarge     *photo.TooLargeError
		level        *types.LevelError
	)

	switch {
	case errors.Is(err, types.ErrNoTemplate), errors.Is(err, export.ErrExportInProgress):
		return http.StatusConflict
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.As(err, &unitMissing), errors.Is(err, state.ErrDiscarded):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &fieldErrs), errors.As(err, &scope),
		errors.Is(err, entries.ErrMissingExtraType), errors.As(err, &badType), errors.As(err, &level):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &snapshot):
		return http.StatusUnprocessableEntity
	case errors.As(err, &exportFailed):
		if exportFailed.Stage == export.StagePhoto {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the user-facing message for err. The missing template
// case uses the blocking notice text.
func errorMessage(err error) string {
	if errors.Is(err, types.ErrNoTemplate) {
		return types.NoTemplateNotice
	}
	return err.Error()
}
