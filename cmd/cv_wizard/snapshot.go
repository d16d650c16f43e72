package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/cv-wizard/internal/schemas"
	"github.com/jonathan/cv-wizard/internal/types"
)

// loadSnapshot reads a snapshot file, validates it against the snapshot
// schema and decodes it.
func loadSnapshot(path string) (types.AppState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.AppState{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if err := schemas.ValidateSnapshot(data); err != nil {
		return types.AppState{}, fmt.Errorf("snapshot %s is invalid: %w", path, err)
	}

	st := types.NewAppState()
	if err := json.Unmarshal(data, &st); err != nil {
		return types.AppState{}, fmt.Errorf("failed to unmarshal snapshot JSON: %w", err)
	}
	st.Normalize()
	return st, nil
}

// validationProblems flattens a schema validation error into printable lines.
func validationProblems(err error) []string {
	var verr *schemas.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		problems = append(problems, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return problems
}

// staticSource serves a decoded snapshot to the export pipeline. There is
// never a photo read in flight.
type staticSource struct {
	state types.AppState
}

func (s staticSource) Snapshot() types.AppState {
	return s.state.Clone()
}

func (staticSource) WaitPhoto(context.Context) error {
	return nil
}
