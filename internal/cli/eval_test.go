package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalJSON(t *testing.T, args ...string) EvalResult {
	t.Helper()
	out, err := execute(t, append([]string{"eval", "--format", "json"}, args...)...)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   EvalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestEvalBinary(t *testing.T) {
	// x(AL)x(NI) * (L0 + L1 (x(AL) - x(NI))) = 0.24 * (-10000 + 1000 * -0.2)
	res := evalJSON(t, alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--T", "1000", "--y", "AL=0.4,NI=0.6")
	assert.InDelta(t, -2448.0, res.Value, 1e-9)
	assert.Equal(t, 1000.0, res.T)
	assert.Equal(t, 101325.0, res.P)
	assert.Equal(t, map[string]float64{"AL": 0.4, "NI": 0.6}, res.Y)
}

func TestEvalSublatticeKeys(t *testing.T) {
	res := evalJSON(t, alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--T", "1000", "--y", "0:al=0.4,0:ni=0.6")
	assert.InDelta(t, -2448.0, res.Value, 1e-9)
}

func TestEvalText(t *testing.T) {
	out, err := execute(t, "eval", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--T", "1000", "--y", "AL=0.5,NI=0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "LIQUID(T=1000, P=101325) = -2500")
}

func TestEvalOutsideWindow(t *testing.T) {
	res := evalJSON(t, alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--T", "20000", "--y", "AL=0.4,NI=0.6")
	assert.Equal(t, 0.0, res.Value)
}

func TestEvalStrictOutsideWindow(t *testing.T) {
	out, err := execute(t, "eval", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--T", "20000", "--y", "AL=0.4,NI=0.6", "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeEval)
	assert.Contains(t, out, "no applicable temperature interval")
}

func TestEvalMissingFraction(t *testing.T) {
	out, err := execute(t, "eval", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--y", "AL=0.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeUsage)
	assert.Contains(t, out, "no value for Y(LIQUID,0,NI)")
}

func TestEvalBadFraction(t *testing.T) {
	out, err := execute(t, "eval", alniDatabase, "--phase", "LIQUID", "--components", "AL,NI",
		"--y", "AL=abc,NI=0.6")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUsage)
	assert.Contains(t, out, "--y AL")
}

var symbolicDatabase = filepath.Join("..", "harness", "testdata", "databases", "symbolic.cue")

func TestEvalSymbols(t *testing.T) {
	res := evalJSON(t, symbolicDatabase, "--phase", "LIQUID", "--components", "A,B",
		"--T", "1000", "--y", "A=0.3,B=0.7", "--symbol", "vv0001=1000")
	assert.InDelta(t, 210.0, res.Value, 1e-9)

	// Without values the symbolic rows are left out.
	res = evalJSON(t, symbolicDatabase, "--phase", "LIQUID", "--components", "A,B",
		"--T", "1000", "--y", "A=0.3,B=0.7")
	assert.Equal(t, 0.0, res.Value)
}

func TestEvalUnboundSymbol(t *testing.T) {
	out, err := execute(t, "eval", symbolicDatabase, "--phase", "LIQUID", "--components", "A,B",
		"--T", "1000", "--y", "A=0.3,B=0.7", "--symbol", "VV0002=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeEval)
	assert.Contains(t, out, `unbound symbol "VV0001"`)
}
