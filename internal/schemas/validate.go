// Package schemas provides JSON Schema validation of wizard snapshots.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	rootschemas "github.com/jonathan/cv-wizard/schemas"
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

var (
	appStateOnce   sync.Once
	appStateSchema *gojsonschema.Schema
	appStateErr    error
)

func compiledAppState() (*gojsonschema.Schema, error) {
	appStateOnce.Do(func() {
		appStateSchema, appStateErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(rootschemas.AppState))
		if appStateErr != nil {
			appStateErr = &SchemaLoadError{
				Path:    "app_state.schema.json",
				Message: "embedded schema does not compile",
				Cause:   appStateErr,
			}
		}
	})
	return appStateSchema, appStateErr
}

// ValidateSnapshot validates serialized AppState bytes against the embedded
// snapshot schema.
func ValidateSnapshot(data []byte) error {
	schema, err := compiledAppState()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &SchemaLoadError{
			Path:    "(snapshot)",
			Message: "document could not be loaded",
			Cause:   err,
		}
	}
	return toValidationError(result)
}

// ValidateSnapshotFile validates a snapshot JSON file on disk.
func ValidateSnapshotFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve snapshot path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("snapshot file not found: %s", absPath)
		}
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return ValidateSnapshot(data)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
