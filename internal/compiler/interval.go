package compiler

import (
	"math"
	"sort"

	"github.com/roach88/rkc/internal/ir"
)

// Interval is a temperature range with independently open or closed ends.
// Infinite ends are always open.
type Interval struct {
	Lo, Hi         float64
	LoOpen, HiOpen bool
}

// Unbounded is the whole real line.
func Unbounded() Interval {
	return Interval{Lo: math.Inf(-1), Hi: math.Inf(1), LoOpen: true, HiOpen: true}
}

// Empty reports whether the interval contains no point.
func (i Interval) Empty() bool {
	if i.Lo > i.Hi {
		return true
	}
	return i.Lo == i.Hi && (i.LoOpen || i.HiOpen)
}

// Intersect returns the common part of i and o. The result may be empty.
func (i Interval) Intersect(o Interval) Interval {
	out := i
	switch {
	case o.Lo > out.Lo:
		out.Lo, out.LoOpen = o.Lo, o.LoOpen
	case o.Lo == out.Lo:
		out.LoOpen = out.LoOpen || o.LoOpen
	}
	switch {
	case o.Hi < out.Hi:
		out.Hi, out.HiOpen = o.Hi, o.HiOpen
	case o.Hi == out.Hi:
		out.HiOpen = out.HiOpen || o.HiOpen
	}
	return out
}

// Overlaps reports whether i and o share at least one point.
func (i Interval) Overlaps(o Interval) bool {
	return !i.Intersect(o).Empty()
}

// String renders the interval in the usual bracket notation.
func (i Interval) String() string {
	lb, rb := "[", "]"
	if i.LoOpen {
		lb = "("
	}
	if i.HiOpen {
		rb = ")"
	}
	return lb + ir.FormatFloat(i.Lo) + ", " + ir.FormatFloat(i.Hi) + rb
}

// ToInterval resolves a temperature condition to an interval.
//
// Relations must be on T; conjunctions intersect. Anything else, or a
// conjunction with no solution, is ErrUnsupportedCondition.
func ToInterval(cond ir.Condition) (Interval, error) {
	switch c := cond.(type) {
	case ir.Relation:
		if c.Var != ir.Temperature {
			return Interval{}, newError(ErrUnsupportedCondition, c, "condition on %q, only T is supported", c.Var)
		}
		iv := Unbounded()
		switch c.Op {
		case ir.OpLT:
			iv.Hi, iv.HiOpen = c.Value, true
		case ir.OpLE:
			iv.Hi, iv.HiOpen = c.Value, false
		case ir.OpGT:
			iv.Lo, iv.LoOpen = c.Value, true
		case ir.OpGE:
			iv.Lo, iv.LoOpen = c.Value, false
		default:
			return Interval{}, newError(ErrUnsupportedCondition, c, "unknown operator %q", c.Op)
		}
		return iv, nil
	case ir.And:
		if len(c.Conds) == 0 {
			return Interval{}, newError(ErrUnsupportedCondition, c, "empty conjunction")
		}
		iv := Unbounded()
		for _, inner := range c.Conds {
			part, err := ToInterval(inner)
			if err != nil {
				return Interval{}, err
			}
			iv = iv.Intersect(part)
		}
		if iv.Empty() {
			return Interval{}, newError(ErrUnsupportedCondition, c, "condition is never satisfied")
		}
		return iv, nil
	case nil:
		return Interval{}, newError(ErrUnsupportedCondition, nil, "missing condition")
	default:
		return Interval{}, newError(ErrUnsupportedCondition, cond, "condition does not bound T")
	}
}

// checkPiecewise returns an error unless the intervals are pairwise
// disjoint and their union is one connected interval.
func checkPiecewise(ivs []Interval, expr ir.Node) error {
	for i := range ivs {
		for j := i + 1; j < len(ivs); j++ {
			if ivs[i].Overlaps(ivs[j]) {
				return newError(ErrOverlappingInterval, expr, "branches %s and %s overlap", ivs[i], ivs[j])
			}
		}
	}

	sorted := append([]Interval(nil), ivs...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Lo < sorted[b].Lo })
	for k := 1; k < len(sorted); k++ {
		prev, next := sorted[k-1], sorted[k]
		// Disjoint, so next starts at or after prev ends.
		if next.Lo > prev.Hi || (prev.HiOpen && next.LoOpen) {
			return newError(ErrDiscontinuousPiecewise, expr, "gap between %s and %s", prev, next)
		}
	}
	return nil
}
