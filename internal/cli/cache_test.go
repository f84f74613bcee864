package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheEmpty(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "rkc.db")

	out, err := execute(t, "cache", "--db", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "No cached terms.")
}

func TestCacheListAndPurge(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "rkc.db")

	_, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--db", storePath)
	require.NoError(t, err)
	_, err = execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--db", storePath,
		"--tmax", "3000")
	require.NoError(t, err)

	out, err := execute(t, "cache", "--db", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 cached term(s):")
	assert.Contains(t, out, "LIQUID: 2 column(s), 3 row(s), 0 symbolic")

	out, err = execute(t, "cache", "--db", storePath, "--phase", "fcc_a1")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached terms.")

	out, err = execute(t, "cache", "--db", storePath, "--purge")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Purged 2 cached term(s)")

	out, err = execute(t, "cache", "--db", storePath)
	require.NoError(t, err)
	assert.Contains(t, out, "No cached terms.")
}

func TestCacheJSON(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "rkc.db")

	out, err := execute(t, "compile", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI", "--db", storePath,
		"--format", "json")
	require.NoError(t, err)

	var compiled struct {
		Data CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &compiled))
	require.NotEmpty(t, compiled.Data.Key)

	out, err = execute(t, "cache", "--db", storePath, "--phase", "liquid", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CacheResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Terms, 1)
	assert.Equal(t, compiled.Data.Key, resp.Data.Terms[0].Key)
	assert.Equal(t, "LIQUID", resp.Data.Terms[0].Phase)
	assert.Equal(t, 2, resp.Data.Terms[0].Columns)
	assert.Equal(t, 3, resp.Data.Terms[0].Rows)
}
