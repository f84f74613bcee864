package assembler

import (
	"fmt"
	"strconv"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// CompiledTerm is the result of one assembly.
type CompiledTerm struct {
	Phase      string
	Components []string
	DOF        DOF
	Matrix     *matrix.Matrix

	// Parameters lists the records compiled, synthesized ones included, in
	// processing order. On a cache hit it holds the records the source
	// returned.
	Parameters []ir.Parameter

	// Synthesized lists the implied ternary records. Empty on a cache hit.
	Synthesized []ir.Parameter

	// Key is the assembly key, set when a cache is configured.
	Key    string
	Cached bool
}

// Eval evaluates the numeric rows at (p, t, y).
func (c *CompiledTerm) Eval(p, t float64, y []float64) float64 {
	return c.Matrix.Eval(p, t, y)
}

// EvalStrict evaluates the numeric rows and fails when no row covers t.
func (c *CompiledTerm) EvalStrict(p, t float64, y []float64) (float64, error) {
	return c.Matrix.EvalStrict(p, t, y)
}

// EvalWith evaluates numeric and symbolic rows.
func (c *CompiledTerm) EvalWith(p, t float64, y []float64, symbols map[string]float64) (float64, error) {
	return c.Matrix.EvalWith(p, t, y, symbols)
}

// Composition orders named fraction values into a degree-of-freedom
// vector. Each column is looked up by its full name (Y(LIQUID,0,A)), then
// by "sublattice:component" (0:A), then by the bare component (A).
func (c *CompiledTerm) Composition(values map[string]float64) ([]float64, error) {
	fracs := c.DOF.Fractions()
	out := make([]float64, len(fracs))
	for i, f := range fracs {
		v, ok := values[f.Name]
		if !ok {
			v, ok = values[strconv.Itoa(f.Sublattice)+":"+f.Component]
		}
		if !ok {
			v, ok = values[f.Component]
		}
		if !ok {
			return nil, fmt.Errorf("no value for %s", f.Name)
		}
		out[i] = v
	}
	return out, nil
}
