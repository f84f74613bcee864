package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rkc/internal/compiler"
)

// Scenario defines a conformance test scenario: one assembled term and the
// values it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Database is a CUE file or directory. LoadScenario resolves a
	// relative path against the scenario file's directory.
	Database string `yaml:"database"`

	Phase      string   `yaml:"phase"`
	Components []string `yaml:"components"`

	// Type restricts the parameter type, e.g. L. Empty selects every type.
	Type string `yaml:"type,omitempty"`

	// Window overrides the top-level temperature window [lo, hi).
	Window []float64 `yaml:"window,omitempty"`

	// ExpectError is a compile error kind the assembly must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`

	Points []Point `yaml:"points,omitempty"`
}

// Point is one evaluation of the compiled term.
type Point struct {
	T float64 `yaml:"T"`
	P float64 `yaml:"P"`

	// Y maps fraction names to values.
	Y map[string]float64 `yaml:"y"`

	// Symbols binds symbolic rows. When set, the point uses EvalWith.
	Symbols map[string]float64 `yaml:"symbols,omitempty"`

	// Strict fails the point when no row covers T.
	Strict bool `yaml:"strict,omitempty"`

	// Expect is the expected value; ExpectError a substring of the
	// expected evaluation error. Exactly one must be set.
	Expect      *float64 `yaml:"expect,omitempty"`
	ExpectError string   `yaml:"expect_error,omitempty"`

	// Tolerance is relative to max(1, |expect|). Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`
}

// DefaultTolerance applies to points without an explicit tolerance.
const DefaultTolerance = 1e-9

var compileErrorKinds = map[string]bool{
	string(compiler.ErrUnsupportedCondition):   true,
	string(compiler.ErrOverlappingInterval):    true,
	string(compiler.ErrDiscontinuousPiecewise): true,
	string(compiler.ErrUnsupportedBase):        true,
	string(compiler.ErrMalformedExpression):    true,
	string(compiler.ErrMissingDegreeOfFreedom): true,
	string(compiler.ErrUnsupportedNodeKind):    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if !filepath.IsAbs(scenario.Database) {
		scenario.Database = filepath.Join(filepath.Dir(path), scenario.Database)
	}
	if _, err := os.Stat(scenario.Database); err != nil {
		return nil, fmt.Errorf("invalid scenario: database not found: %s", scenario.Database)
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. The database path is
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles returns every .yaml or .yml file under dir, sorted.
// A non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Database == "" {
		return fmt.Errorf("database is required")
	}

	if s.Phase == "" {
		return fmt.Errorf("phase is required")
	}

	if len(s.Components) == 0 {
		return fmt.Errorf("components list is required and must be non-empty")
	}

	if len(s.Window) != 0 {
		if len(s.Window) != 2 {
			return fmt.Errorf("window must be [lo, hi], got %d values", len(s.Window))
		}
		if !(s.Window[0] < s.Window[1]) {
			return fmt.Errorf("window [%v, %v) is empty", s.Window[0], s.Window[1])
		}
	}

	if s.ExpectError != "" {
		if !compileErrorKinds[s.ExpectError] {
			return fmt.Errorf("unknown compile error kind %q", s.ExpectError)
		}
		if len(s.Points) > 0 {
			return fmt.Errorf("points cannot be combined with expect_error")
		}
		return nil
	}

	if len(s.Points) == 0 {
		return fmt.Errorf("points list is required and must be non-empty")
	}

	for i := range s.Points {
		if err := validatePoint(i, &s.Points[i]); err != nil {
			return err
		}
	}

	return nil
}

// validatePoint validates a single evaluation point.
func validatePoint(index int, p *Point) error {
	if len(p.Y) == 0 {
		return fmt.Errorf("points[%d]: y is required", index)
	}
	if (p.Expect == nil) == (p.ExpectError == "") {
		return fmt.Errorf("points[%d]: exactly one of expect and expect_error is required", index)
	}
	if p.Tolerance < 0 {
		return fmt.Errorf("points[%d]: tolerance must be non-negative", index)
	}
	return nil
}
