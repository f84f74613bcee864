package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rkc/internal/matrix"
)

func TestCompileText(t *testing.T) {
	out, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--type", "L")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ LIQUID: 2 parameter(s), 3 row(s), 0 symbolic (compiled)")
	assert.Contains(t, out, "dof: Y(LIQUID,0,AL) Y(LIQUID,0,NI)")
	assert.Contains(t, out, "rows: 3")
}

func TestCompileNormalizesNames(t *testing.T) {
	out, err := execute(t, "compile", alniDatabase, "--phase", "liquid", "--components", "ni,al")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ LIQUID: 2 parameter(s)")
}

func TestCompileJSON(t *testing.T) {
	out, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "LIQUID", resp.Data.Phase)
	assert.Equal(t, []string{"AL", "NI"}, resp.Data.Components)
	assert.Len(t, resp.Data.Parameters, 2)
	assert.Empty(t, resp.Data.Synthesized)
	assert.False(t, resp.Data.Cached)
	require.NotNil(t, resp.Data.Matrix)
	assert.Equal(t, 3, resp.Data.Matrix.Len())
}

func TestCompileOutputFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "term.json")

	out, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote matrix to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var m matrix.Matrix
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, []string{"Y(LIQUID,0,AL)", "Y(LIQUID,0,NI)"}, m.DOF)
	assert.Equal(t, 3, m.Len())
}

func TestCompileUnknownPhase(t *testing.T) {
	out, err := execute(t, "compile", alniDatabase, "--phase", "BCC_A2", "--components", "AL,NI")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUsage)
	assert.Contains(t, out, "phase BCC_A2 not found")
}

func TestCompileRequiresSource(t *testing.T) {
	out, err := execute(t, "compile", "--phase", "LIQUID", "--components", "AL,NI")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "a database path or --db is required")
}

func TestCompileMissingDatabase(t *testing.T) {
	_, err := execute(t, "compile", "/nonexistent/alni.cue", "--phase", "LIQUID", "--components", "AL,NI")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
}

func TestCompileEmptyWindow(t *testing.T) {
	_, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--tmin", "3000", "--tmax", "1000")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCompile)
}

func TestCompileCompileErrorDetails(t *testing.T) {
	out, err := execute(t, "compile", filepath.Join("testdata", "overlap.cue"),
		"--phase", "LIQUID", "--components", "A,B", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompile, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "OVERLAPPING_INTERVAL", details["kind"])
}

func TestCompileCachesInStore(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "rkc.db")
	args := []string{"compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--db", storePath}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "(compiled)")

	out, err = execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "(loaded from cache)")
	assert.Contains(t, out, "rows: 3")
}

func TestCompileWindowChangesCacheKey(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "rkc.db")
	args := []string{"compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--db", storePath}

	_, err := execute(t, args...)
	require.NoError(t, err)

	out, err := execute(t, append(args, "--tmax", "3000")...)
	require.NoError(t, err)
	assert.Contains(t, out, "(compiled)")
}
