package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/rkc/internal/assembler"
	"github.com/roach88/rkc/internal/database"
	"github.com/roach88/rkc/internal/ir"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	assembler *assembler.Assembler
	source    *database.Memory
	phase     ir.Phase
	logger    *slog.Logger
}

// Run executes a test scenario and returns the result. Logs are discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunContext executes a test scenario and returns the result.
//
// Each scenario loads its database afresh into memory. Execution flow:
//  1. Load the CUE database
//  2. Assemble the term for the phase, components and type
//  3. Evaluate every point against its expectation
//
// A returned error means the scenario could not run (missing or
// malformed database, unknown phase). Failed expectations are reported in
// the Result instead.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	db, err := database.Load(scenario.Database)
	if err != nil {
		return nil, fmt.Errorf("load database: %w", err)
	}

	phase, ok := db.Phase(ir.Normalize(scenario.Phase))
	if !ok {
		return nil, fmt.Errorf("phase %s not found in %s", scenario.Phase, scenario.Database)
	}

	opts := []assembler.Option{assembler.WithLogger(logger)}
	if len(scenario.Window) == 2 {
		opts = append(opts, assembler.WithWindow(scenario.Window[0], scenario.Window[1]))
	}

	h := &Harness{
		assembler: assembler.New(opts...),
		source:    database.NewMemory(db),
		phase:     phase,
		logger:    logger,
	}
	return h.run(ctx, scenario), nil
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) *Result {
	result := NewResult()

	components := ir.NormalizeAll(append([]string(nil), scenario.Components...))
	q := ir.Query{ParameterType: ir.Normalize(scenario.Type)}

	term, err := h.assembler.Assemble(ctx, components, h.phase, h.source, q)
	if scenario.ExpectError != "" {
		checkAssemblyError(result, err, scenario.ExpectError)
		return result
	}
	if err != nil {
		result.AddError(fmt.Sprintf("assemble: %v", err))
		return result
	}

	result.Matrix = term.Matrix
	result.Parameters = len(term.Parameters)
	result.Synthesized = len(term.Synthesized)
	h.logger.Debug("scenario assembled",
		"scenario", scenario.Name,
		"rows", term.Matrix.Len(),
		"parameters", result.Parameters,
	)

	for i, p := range scenario.Points {
		pr := checkPoint(term, i, p)
		result.Points = append(result.Points, pr)
		if !pr.Pass {
			result.AddError(fmt.Sprintf("points[%d]: %s", i, pr.Error))
		}
	}
	return result
}
