package compiler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rkc/internal/ir"
)

func rel(op ir.RelOp, v float64) ir.Relation {
	return ir.Relation{Var: ir.Temperature, Op: op, Value: v}
}

func TestToIntervalRelations(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name string
		cond ir.Condition
		want Interval
	}{
		{"lt", rel(ir.OpLT, 2000), Interval{Lo: -inf, Hi: 2000, LoOpen: true, HiOpen: true}},
		{"le", rel(ir.OpLE, 2000), Interval{Lo: -inf, Hi: 2000, LoOpen: true}},
		{"gt", rel(ir.OpGT, 298.15), Interval{Lo: 298.15, Hi: inf, LoOpen: true, HiOpen: true}},
		{"ge", rel(ir.OpGE, 298.15), Interval{Lo: 298.15, Hi: inf, HiOpen: true}},
		{
			"and",
			ir.And{Conds: []ir.Condition{rel(ir.OpGE, 298.15), rel(ir.OpLT, 2000)}},
			Interval{Lo: 298.15, Hi: 2000, HiOpen: true},
		},
		{
			"and keeps tightest bound",
			ir.And{Conds: []ir.Condition{rel(ir.OpGE, 100), rel(ir.OpGT, 200), rel(ir.OpLT, 500), rel(ir.OpLE, 400)}},
			Interval{Lo: 200, Hi: 400, LoOpen: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInterval(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToIntervalUnsupported(t *testing.T) {
	tests := []struct {
		name string
		cond ir.Condition
	}{
		{"pressure", ir.Relation{Var: ir.Pressure, Op: ir.OpLT, Value: 1e5}},
		{"always", ir.Always{}},
		{"empty and", ir.And{}},
		{"contradiction", ir.And{Conds: []ir.Condition{rel(ir.OpLT, 100), rel(ir.OpGE, 200)}}},
		{"touching open ends", ir.And{Conds: []ir.Condition{rel(ir.OpLT, 100), rel(ir.OpGE, 100)}}},
		{"fraction inside conjunction", ir.And{Conds: []ir.Condition{rel(ir.OpLT, 100), ir.Relation{Var: "Y(A,0,B)", Op: ir.OpLT, Value: 0.5}}}},
		{"nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToInterval(tt.cond)
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrUnsupportedCondition), "got %v", err)
		})
	}
}

func TestIntervalOverlapHonoursClosure(t *testing.T) {
	a := Interval{Lo: 298.15, Hi: 2000, HiOpen: true}
	b := Interval{Lo: 2000, Hi: 6000, HiOpen: true}
	c := Interval{Lo: 298.15, Hi: 2000}

	assert.False(t, a.Overlaps(b), "[298.15, 2000) and [2000, 6000) share no point")
	assert.True(t, c.Overlaps(b), "[298.15, 2000] and [2000, 6000) share 2000")
	assert.True(t, a.Overlaps(a))
}

func TestIntervalEmpty(t *testing.T) {
	assert.False(t, Interval{Lo: 1, Hi: 1}.Empty(), "a closed point is not empty")
	assert.True(t, Interval{Lo: 1, Hi: 1, HiOpen: true}.Empty())
	assert.True(t, Interval{Lo: 2, Hi: 1}.Empty())
	assert.False(t, Unbounded().Empty())
}

func TestIntervalString(t *testing.T) {
	assert.Equal(t, "[298.15, 2000)", Interval{Lo: 298.15, Hi: 2000, HiOpen: true}.String())
	assert.Equal(t, "(-Inf, 5]", Interval{Lo: math.Inf(-1), Hi: 5, LoOpen: true}.String())
}

func TestCheckPiecewise(t *testing.T) {
	lowBranch := Interval{Lo: 298.15, Hi: 2000, HiOpen: true}
	highBranch := Interval{Lo: 2000, Hi: 6000, HiOpen: true}

	t.Run("contiguous in any order", func(t *testing.T) {
		assert.NoError(t, checkPiecewise([]Interval{highBranch, lowBranch}, nil))
	})

	t.Run("single branch", func(t *testing.T) {
		assert.NoError(t, checkPiecewise([]Interval{lowBranch}, nil))
	})

	t.Run("gap", func(t *testing.T) {
		gapped := Interval{Lo: 2500, Hi: 6000, HiOpen: true}
		err := checkPiecewise([]Interval{lowBranch, gapped}, nil)
		assert.True(t, IsKind(err, ErrDiscontinuousPiecewise), "got %v", err)
	})

	t.Run("missing point", func(t *testing.T) {
		openStart := Interval{Lo: 2000, Hi: 6000, LoOpen: true, HiOpen: true}
		err := checkPiecewise([]Interval{lowBranch, openStart}, nil)
		assert.True(t, IsKind(err, ErrDiscontinuousPiecewise), "got %v", err)
	})

	t.Run("overlap", func(t *testing.T) {
		wide := Interval{Lo: 1000, Hi: 6000, HiOpen: true}
		err := checkPiecewise([]Interval{lowBranch, wide}, nil)
		assert.True(t, IsKind(err, ErrOverlappingInterval), "got %v", err)
	})
}
