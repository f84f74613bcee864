package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// alniDatabase is a LIQUID(AL,NI) database with L0 = -10000 and L1 = 1000.
var alniDatabase = filepath.Join("testdata", "alni.cue")

// scenariosDir holds the harness conformance scenarios.
var scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeCommand(t, NewRootCommand(), args...)
}

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
