package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/rkc/internal/assembler"
	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/ir"
)

// checkAssemblyError verifies that assembly failed with the expected kind.
func checkAssemblyError(result *Result, err error, kind string) {
	if err == nil {
		result.AddError(fmt.Sprintf("expected %s, assembly succeeded", kind))
		return
	}
	if !compiler.IsKind(err, compiler.ErrorKind(kind)) {
		result.AddError(fmt.Sprintf("expected %s, got: %v", kind, err))
	}
}

// checkPoint evaluates term at p and compares against the expectation.
func checkPoint(term *assembler.CompiledTerm, index int, p Point) PointResult {
	pr := PointResult{Index: index, T: p.T}
	if p.Expect != nil {
		pr.Want = *p.Expect
	}

	got, err := evaluate(term, p)
	pr.Got = got

	if p.ExpectError != "" {
		switch {
		case err == nil:
			pr.Error = fmt.Sprintf("expected error containing %q, got %v", p.ExpectError, got)
		case !strings.Contains(err.Error(), p.ExpectError):
			pr.Error = fmt.Sprintf("expected error containing %q, got: %v", p.ExpectError, err)
		}
		pr.Pass = pr.Error == ""
		return pr
	}

	if err != nil {
		pr.Error = err.Error()
		return pr
	}

	tol := p.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if !withinTolerance(got, pr.Want, tol) {
		pr.Error = fmt.Sprintf("T=%v: got %v, want %v (tolerance %v)", p.T, got, pr.Want, tol)
	}
	pr.Pass = pr.Error == ""
	return pr
}

func evaluate(term *assembler.CompiledTerm, p Point) (float64, error) {
	y, err := term.Composition(normalizeKeys(p.Y))
	if err != nil {
		return 0, err
	}
	switch {
	case len(p.Symbols) > 0:
		return term.EvalWith(p.P, p.T, y, normalizeKeys(p.Symbols))
	case p.Strict:
		return term.EvalStrict(p.P, p.T, y)
	default:
		return term.Eval(p.P, p.T, y), nil
	}
}

func withinTolerance(got, want, tol float64) bool {
	if math.IsNaN(got) {
		return false
	}
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}

func normalizeKeys(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[ir.Normalize(k)] = v
	}
	return out
}
