package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the compiled matrix of a result for golden comparison.
func Snapshot(result *Result) ([]byte, error) {
	if result.Matrix == nil {
		return nil, fmt.Errorf("no compiled matrix to snapshot")
	}
	var buf bytes.Buffer
	if err := result.Matrix.WriteText(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the compiled matrix
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run or any of its points fail.
// Test failure (via goldie) occurs if the matrix doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %s", scenario.Name, strings.Join(result.Errors, "; "))
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}

// GoldenPath returns the golden file for a scenario file:
// {dir}/golden/{base name}.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// CompareGolden reports whether the result matches the golden file at
// path. A missing golden file is reported as os.ErrNotExist.
func CompareGolden(path string, result *Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	got, err := Snapshot(result)
	if err != nil {
		return false, err
	}
	return bytes.Equal(got, want), nil
}

// UpdateGolden writes the result's snapshot to path.
func UpdateGolden(path string, result *Result) error {
	data, err := Snapshot(result)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
