package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidDatabase(t *testing.T) {
	out, err := execute(t, "validate", alniDatabase)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Database valid: 1 phase(s), 2 parameter(s)")
}

func TestValidateValidDatabaseJSON(t *testing.T) {
	out, err := execute(t, "validate", alniDatabase, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Phases)
	assert.Equal(t, 2, resp.Data.Parameters)
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := execute(t, "validate", "/nonexistent/database/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestValidateUnknownPhase(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "unknown_phase.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E110")
	assert.Contains(t, out, `undefined phase "BCC_A2"`)
}

func TestValidateUnknownPhaseJSON(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join("testdata", "unknown_phase.cue"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E110", resp.Error.Code)
}

func TestValidateMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	db := `package rkdb

phase: LIQUID: sublattices: [["A", "B"]]

parameter: [{
	phase:        "LIQUID"
	type:         "L"
	constituents: [["A", "B"]]
	order:        0
}]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(db), 0644))

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "value is required")
}
