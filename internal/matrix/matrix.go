package matrix

import (
	"fmt"
	"slices"
)

// Reserved exponent columns. Degree-of-freedom columns follow at
// NumReserved + i.
const (
	PressureCol       = 0
	TemperatureCol    = 1
	LogPressureCol    = 2
	LogTemperatureCol = 3

	NumReserved = 4
)

// Row is one numeric row.
type Row struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Powers []int   `json:"powers"` // NumReserved + len(DOF)
	Scale  float64 `json:"scale"`
	Coef   float64 `json:"coef"`
}

// SymbolicRow is a row whose magnitude is an externally supplied symbol.
type SymbolicRow struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Powers []int   `json:"powers"`
	Scale  float64 `json:"scale"`
	Symbol string  `json:"symbol"`
}

// Contains reports whether r applies at temperature t.
func (r Row) Contains(t float64) bool { return r.Low <= t && t < r.High }

// Contains reports whether r applies at temperature t.
func (r SymbolicRow) Contains(t float64) bool { return r.Low <= t && t < r.High }

// Term is the exponent vector and scale a compilation starts from.
type Term struct {
	Powers []int
	Scale  float64
}

// NewTerm returns a zero exponent vector over numDOF composition columns
// with unit scale.
func NewTerm(numDOF int) Term {
	return Term{Powers: make([]int, NumReserved+numDOF), Scale: 1}
}

// Clone returns an independent copy of t.
func (t Term) Clone() Term {
	return Term{Powers: slices.Clone(t.Powers), Scale: t.Scale}
}

// Matrix is a compiled term: its degree-of-freedom columns and its rows.
type Matrix struct {
	DOF      []string      `json:"dof"`
	Rows     []Row         `json:"rows"`
	Symbolic []SymbolicRow `json:"symbolic"`
}

// New returns an empty matrix over the given degree-of-freedom columns.
func New(dof []string) *Matrix {
	return &Matrix{
		DOF:      slices.Clone(dof),
		Rows:     []Row{},
		Symbolic: []SymbolicRow{},
	}
}

// Width is the length of every exponent vector in m.
func (m *Matrix) Width() int { return NumReserved + len(m.DOF) }

// AddRow appends a numeric row built from term. Zero coefficients are
// dropped.
func (m *Matrix) AddRow(term Term, lo, hi, coef float64) {
	if coef == 0 {
		return
	}
	m.Rows = append(m.Rows, Row{
		Low:    lo,
		High:   hi,
		Powers: slices.Clone(term.Powers),
		Scale:  term.Scale,
		Coef:   coef,
	})
}

// AddSymbolic appends a symbolic row built from term.
func (m *Matrix) AddSymbolic(term Term, lo, hi float64, symbol string) {
	m.Symbolic = append(m.Symbolic, SymbolicRow{
		Low:    lo,
		High:   hi,
		Powers: slices.Clone(term.Powers),
		Scale:  term.Scale,
		Symbol: symbol,
	})
}

// Append adds every row of other to m. Both must share the same columns.
func (m *Matrix) Append(other *Matrix) error {
	if !slices.Equal(m.DOF, other.DOF) {
		return fmt.Errorf("append: column mismatch: %v vs %v", m.DOF, other.DOF)
	}
	m.Rows = append(m.Rows, other.Rows...)
	m.Symbolic = append(m.Symbolic, other.Symbolic...)
	return nil
}

// Len is the number of numeric rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// Covers reports whether some numeric or symbolic row applies at t.
func (m *Matrix) Covers(t float64) bool {
	for _, r := range m.Rows {
		if r.Contains(t) {
			return true
		}
	}
	for _, r := range m.Symbolic {
		if r.Contains(t) {
			return true
		}
	}
	return false
}

// Symbols returns the distinct symbol names referenced by symbolic rows,
// in first-seen order.
func (m *Matrix) Symbols() []string {
	var out []string
	for _, r := range m.Symbolic {
		if !slices.Contains(out, r.Symbol) {
			out = append(out, r.Symbol)
		}
	}
	return out
}

// Dense returns the numeric rows in the flat layout
// [T_low, T_high, exponents..., scale, coef].
func (m *Matrix) Dense() [][]float64 {
	out := make([][]float64, len(m.Rows))
	for i, r := range m.Rows {
		row := make([]float64, 0, len(r.Powers)+4)
		row = append(row, r.Low, r.High)
		for _, e := range r.Powers {
			row = append(row, float64(e))
		}
		row = append(row, r.Scale, r.Coef)
		out[i] = row
	}
	return out
}

// Validate checks the row invariants of a matrix built outside this
// package, for example one decoded from a cache.
func (m *Matrix) Validate() error {
	width := m.Width()
	for i, r := range m.Rows {
		if len(r.Powers) != width {
			return fmt.Errorf("row %d: %d exponents, want %d", i, len(r.Powers), width)
		}
		if !(r.Low < r.High) {
			return fmt.Errorf("row %d: empty interval [%v, %v)", i, r.Low, r.High)
		}
		if r.Coef == 0 {
			return fmt.Errorf("row %d: zero coefficient", i)
		}
	}
	for i, r := range m.Symbolic {
		if len(r.Powers) != width {
			return fmt.Errorf("symbolic row %d: %d exponents, want %d", i, len(r.Powers), width)
		}
		if !(r.Low < r.High) {
			return fmt.Errorf("symbolic row %d: empty interval [%v, %v)", i, r.Low, r.High)
		}
		if r.Symbol == "" {
			return fmt.Errorf("symbolic row %d: empty symbol", i)
		}
	}
	return nil
}
