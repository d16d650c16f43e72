package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSnapshot = `{
	"currentStep": 3,
	"personalDetails": {"firstName": "Ada", "lastName": "Lovelace"},
	"experiences": {
		"resumeObjective": "",
		"education": [{"id": "1700000000001", "degree": "BSc", "startMonth": "09", "startYear": "2010"}],
		"work": [],
		"interests": [{"id": "1700000000002", "hobby": "Chess"}],
		"references": [],
		"skills": [{"id": "1700000000003", "skill": "Go", "level": "Expert"}],
		"languages": [{"id": "1700000000004", "language": "French", "level": ""}],
		"extras": [{"id": "1700000000005", "type": "projects", "description": "Engine"}],
		"referencesOnRequest": false
	},
	"selectedTemplate": "oxford",
	"photoData": "data:image/png;base64,AAAA"
}`

func TestValidateSnapshot_Valid(t *testing.T) {
	assert.NoError(t, ValidateSnapshot([]byte(validSnapshot)))
}

func TestValidateSnapshot_NullsAccepted(t *testing.T) {
	err := ValidateSnapshot([]byte(`{"currentStep": 1, "selectedTemplate": null, "photoData": null}`))
	assert.NoError(t, err)
}

func TestValidateSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"step out of range", `{"currentStep": 4}`},
		{"personal detail not a string", `{"personalDetails": {"firstName": 1}}`},
		{"entry without id", `{"experiences": {"skills": [{"skill": "Go"}]}}`},
		{"unknown skill level", `{"experiences": {"skills": [{"id": "1", "level": "Guru"}]}}`},
		{"photo not an image data url", `{"photoData": "https://example.com/me.png"}`},
		{"extra without type", `{"experiences": {"extras": [{"id": "1"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSnapshot([]byte(tt.json))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateSnapshot_Malformed(t *testing.T) {
	err := ValidateSnapshot([]byte("{ invalid json }"))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(validSnapshot), 0644))

	assert.NoError(t, ValidateSnapshotFile(path))

	err := ValidateSnapshotFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidationError_Format(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{{Field: "currentStep", Message: "must be one of 1, 2, 3"}}}
	assert.Contains(t, err.Error(), "1. currentStep: must be one of 1, 2, 3")
}
