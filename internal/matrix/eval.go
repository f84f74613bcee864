package matrix

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoApplicableInterval is returned by EvalStrict when no row covers the
// requested temperature.
var ErrNoApplicableInterval = errors.New("no applicable temperature interval")

// DimensionError reports a composition vector of the wrong length.
type DimensionError struct {
	Got  int
	Want int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("composition has %d values, want %d", e.Got, e.Want)
}

// UnboundSymbolError reports a symbolic row whose symbol has no value.
type UnboundSymbolError struct {
	Symbol string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("unbound symbol %q", e.Symbol)
}

// Eval sums the numeric rows that apply at temperature t.
//
// A temperature outside every row contributes zero. y must hold one value
// per degree-of-freedom column; use EvalStrict for checked evaluation.
func (m *Matrix) Eval(p, t float64, y []float64) float64 {
	var sum float64
	for _, r := range m.Rows {
		if !r.Contains(t) {
			continue
		}
		sum += powerProduct(r.Powers, p, t, y) * r.Scale * r.Coef
	}
	return sum
}

// EvalStrict is Eval with checks: y must match the columns and some
// numeric or symbolic row must cover t.
func (m *Matrix) EvalStrict(p, t float64, y []float64) (float64, error) {
	if len(y) != len(m.DOF) {
		return 0, &DimensionError{Got: len(y), Want: len(m.DOF)}
	}
	if !m.Covers(t) {
		return 0, fmt.Errorf("T=%v: %w", t, ErrNoApplicableInterval)
	}
	return m.Eval(p, t, y), nil
}

// EvalWith evaluates numeric and symbolic rows, taking symbol values from
// symbols. A symbolic row that applies at t and has no value is an error.
func (m *Matrix) EvalWith(p, t float64, y []float64, symbols map[string]float64) (float64, error) {
	if len(y) != len(m.DOF) {
		return 0, &DimensionError{Got: len(y), Want: len(m.DOF)}
	}
	sum := m.Eval(p, t, y)
	for _, r := range m.Symbolic {
		if !r.Contains(t) {
			continue
		}
		v, ok := symbols[r.Symbol]
		if !ok {
			return 0, &UnboundSymbolError{Symbol: r.Symbol}
		}
		sum += powerProduct(r.Powers, p, t, y) * r.Scale * v
	}
	return sum, nil
}

func powerProduct(powers []int, p, t float64, y []float64) float64 {
	v := ipow(p, powers[PressureCol]) *
		ipow(t, powers[TemperatureCol])
	if e := powers[LogPressureCol]; e != 0 {
		v *= ipow(math.Log(p), e)
	}
	if e := powers[LogTemperatureCol]; e != 0 {
		v *= ipow(math.Log(t), e)
	}
	for i, e := range powers[NumReserved:] {
		v *= ipow(y[i], e)
	}
	return v
}

// ipow is x^n with x^0 == 1 for every x.
func ipow(x float64, n int) float64 {
	switch n {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, float64(n))
}
