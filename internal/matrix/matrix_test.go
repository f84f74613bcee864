package matrix

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryDOF = []string{"Y(LIQUID,0,A)", "Y(LIQUID,0,B)"}

// rkOrder1 is 1000*yA*yB*(yA - yB) = 1000*yA^2*yB - 1000*yA*yB^2.
func rkOrder1(lo, hi float64) *Matrix {
	m := New(binaryDOF)
	t := NewTerm(2)
	t.Powers[NumReserved] = 2
	t.Powers[NumReserved+1] = 1
	m.AddRow(t, lo, hi, 1000)

	t = NewTerm(2)
	t.Powers[NumReserved] = 1
	t.Powers[NumReserved+1] = 2
	t.Scale = -1
	m.AddRow(t, lo, hi, 1000)
	return m
}

func TestEvalBinaryInteraction(t *testing.T) {
	m := rkOrder1(0, 6000)

	got := m.Eval(101325, 1000, []float64{0.3, 0.7})

	assert.InDelta(t, -84.0, got, 1e-9)
}

func TestEvalOutsideEveryRowIsZero(t *testing.T) {
	m := rkOrder1(0, 6000)

	assert.Equal(t, 0.0, m.Eval(1, 6000, []float64{0.3, 0.7}), "upper bound is open")
	assert.Equal(t, 0.0, m.Eval(1, -1, []float64{0.3, 0.7}))
	assert.InDelta(t, -84.0, m.Eval(1, 0, []float64{0.3, 0.7}), 1e-9, "lower bound is closed")
}

func TestEvalStrict(t *testing.T) {
	m := rkOrder1(0, 6000)

	v, err := m.EvalStrict(1, 1000, []float64{0.3, 0.7})
	require.NoError(t, err)
	assert.InDelta(t, -84.0, v, 1e-9)

	_, err = m.EvalStrict(1, 7000, []float64{0.3, 0.7})
	assert.ErrorIs(t, err, ErrNoApplicableInterval)

	_, err = m.EvalStrict(1, 1000, []float64{0.3})
	var dim *DimensionError
	require.ErrorAs(t, err, &dim)
	assert.Equal(t, 1, dim.Got)
	assert.Equal(t, 2, dim.Want)
}

func TestEvalReservedColumns(t *testing.T) {
	m := New(nil)
	term := NewTerm(0)
	term.Powers[PressureCol] = 1
	term.Powers[TemperatureCol] = 2
	term.Powers[LogPressureCol] = 1
	term.Powers[LogTemperatureCol] = -1
	m.AddRow(term, 0, 10000, 3)

	p, temp := 2.0, 500.0
	want := 3 * p * temp * temp * math.Log(p) / math.Log(temp)

	assert.InDelta(t, want, m.Eval(p, temp, nil), 1e-9)
}

func TestEvalZeroPressureWithoutLogColumn(t *testing.T) {
	m := New(nil)
	m.AddRow(NewTerm(0), 0, 10000, 5)

	assert.Equal(t, 5.0, m.Eval(0, 300, nil))
}

func TestAddRowDropsZero(t *testing.T) {
	m := New(binaryDOF)
	m.AddRow(NewTerm(2), 0, 100, 0)
	assert.Equal(t, 0, m.Len())
}

func TestAddRowCopiesPowers(t *testing.T) {
	m := New(binaryDOF)
	term := NewTerm(2)
	m.AddRow(term, 0, 100, 1)

	term.Powers[0] = 9

	assert.Equal(t, 0, m.Rows[0].Powers[0])
}

func TestEvalWith(t *testing.T) {
	m := rkOrder1(0, 6000)
	term := NewTerm(2)
	term.Powers[NumReserved] = 1
	m.AddSymbolic(term, 0, 6000, "VV0001")

	v, err := m.EvalWith(1, 1000, []float64{0.3, 0.7}, map[string]float64{"VV0001": 10})
	require.NoError(t, err)
	assert.InDelta(t, -84.0+3.0, v, 1e-9)

	_, err = m.EvalWith(1, 1000, []float64{0.3, 0.7}, nil)
	var unbound *UnboundSymbolError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "VV0001", unbound.Symbol)

	// Rows that do not apply need no binding.
	v, err = m.EvalWith(1, 7000, []float64{0.3, 0.7}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestEvalIgnoresSymbolicRows(t *testing.T) {
	m := New(binaryDOF)
	m.AddSymbolic(NewTerm(2), 0, 6000, "VV0001")

	assert.Equal(t, 0.0, m.Eval(1, 1000, []float64{0.3, 0.7}))
	assert.True(t, m.Covers(1000), "symbolic rows count toward coverage")
	assert.Equal(t, []string{"VV0001"}, m.Symbols())
}

func TestDense(t *testing.T) {
	m := rkOrder1(0, 6000)

	assert.Equal(t, [][]float64{
		{0, 6000, 0, 0, 0, 0, 2, 1, 1, 1000},
		{0, 6000, 0, 0, 0, 0, 1, 2, -1, 1000},
	}, m.Dense())
}

func TestWriteText(t *testing.T) {
	m := rkOrder1(0, 6000)
	m.AddSymbolic(NewTerm(2), 298.15, 6000, "VV0001")

	want := "dof: Y(LIQUID,0,A) Y(LIQUID,0,B)\n" +
		"rows: 2\n" +
		"0 6000 | 0 0 0 0 | 2 1 | 1 1000\n" +
		"0 6000 | 0 0 0 0 | 1 2 | -1 1000\n" +
		"symbolic: 1\n" +
		"298.15 6000 | 0 0 0 0 | 0 0 | 1 VV0001\n"

	assert.Equal(t, want, m.String())
}

func TestJSONRoundTrip(t *testing.T) {
	m := rkOrder1(0, 6000)
	m.AddSymbolic(NewTerm(2), 0, 6000, "VV0001")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	require.NoError(t, back.Validate())

	assert.Equal(t, m, &back)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    *Matrix
		msg  string
	}{
		{"short powers", &Matrix{DOF: binaryDOF, Rows: []Row{{Low: 0, High: 1, Powers: []int{0}, Scale: 1, Coef: 1}}}, "exponents"},
		{"empty interval", &Matrix{DOF: nil, Rows: []Row{{Low: 1, High: 1, Powers: make([]int, 4), Scale: 1, Coef: 1}}}, "empty interval"},
		{"zero coef", &Matrix{DOF: nil, Rows: []Row{{Low: 0, High: 1, Powers: make([]int, 4), Scale: 1}}}, "zero coefficient"},
		{"empty symbol", &Matrix{DOF: nil, Symbolic: []SymbolicRow{{Low: 0, High: 1, Powers: make([]int, 4), Scale: 1}}}, "empty symbol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestAppend(t *testing.T) {
	a := rkOrder1(0, 6000)
	b := rkOrder1(6000, 10000)

	require.NoError(t, a.Append(b))
	assert.Equal(t, 4, a.Len())

	err := a.Append(New([]string{"X"}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoApplicableInterval))
}

func TestConcurrentEval(t *testing.T) {
	m := rkOrder1(0, 6000)
	done := make(chan float64, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- m.Eval(1, 1000, []float64{0.3, 0.7}) }()
	}
	for i := 0; i < 8; i++ {
		assert.InDelta(t, -84.0, <-done, 1e-9)
	}
}
