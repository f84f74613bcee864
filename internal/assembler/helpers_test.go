package assembler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"

	"github.com/roach88/rkc/internal/ir"
)

// sliceSource is an in-memory ParameterSource over a fixed record list.
type sliceSource struct {
	params []ir.Parameter
	err    error
}

func (s *sliceSource) Search(_ context.Context, q ir.Query) ([]ir.Parameter, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []ir.Parameter
	for _, p := range s.params {
		if q.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

var errSourceDown = errors.New("source unavailable")

func quietAssembler(opts ...Option) *Assembler {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

var (
	liquidAB  = ir.Phase{Name: "LIQUID", Sublattices: [][]string{{"A", "B"}}}
	liquidABC = ir.Phase{Name: "LIQUID", Sublattices: [][]string{{"A", "B", "C"}}}
	fccAB     = ir.Phase{Name: "FCC_A1", Sublattices: [][]string{{"A", "B"}, {"VA", "C"}}}
)

func param(phase, typ string, order int, value ir.Node, subls ...[]string) ir.Parameter {
	return ir.Parameter{
		PhaseName:        phase,
		ParameterType:    typ,
		ConstituentArray: subls,
		ParameterOrder:   order,
		Value:            value,
	}
}

// evalMonomials evaluates a monomial list at y.
func evalMonomials(ms []Monomial, y []float64) float64 {
	var sum float64
	for _, m := range ms {
		v, _ := m.Coef.Float64()
		for i, e := range m.Exps {
			v *= math.Pow(y[i], float64(e))
		}
		sum += v
	}
	return sum
}
