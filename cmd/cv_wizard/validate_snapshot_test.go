package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSnapshotCommand_Valid(t *testing.T) {
	snapshot := writeSnapshot(t, nil)

	output, err := executeCommand(t, "validate-snapshot", snapshot)
	require.NoError(t, err, output)
	assert.Contains(t, output, "valid")
}

func TestValidateSnapshotCommand_Invalid(t *testing.T) {
	good := writeSnapshot(t, nil)
	bad := writeSnapshot(t, func(doc map[string]any) {
		doc["currentStep"] = 7
	})

	output, err := executeCommand(t, "validate-snapshot", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 snapshots are invalid")
	assert.Contains(t, output, "currentStep")
}

func TestValidateSnapshotCommand_RequiresArgs(t *testing.T) {
	_, err := executeCommand(t, "validate-snapshot")
	assert.Error(t, err)
}
