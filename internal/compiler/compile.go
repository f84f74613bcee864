package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// Compile lowers n into rows of out, valid for lo <= T < hi.
//
// term carries the exponent vector and scale inherited from the caller;
// every row produced starts from it. Compile never modifies term. Rows are
// appended to out only; on error out may hold a partial result and should
// be discarded.
func Compile(n ir.Node, term matrix.Term, lo, hi float64, out *matrix.Matrix) error {
	if len(term.Powers) != out.Width() {
		return fmt.Errorf("compile: exponent vector has %d columns, matrix has %d", len(term.Powers), out.Width())
	}
	if !(lo < hi) {
		return fmt.Errorf("compile: empty window [%v, %v)", lo, hi)
	}
	return compile(n, term, lo, hi, out)
}

// Builder owns the accumulator for one compilation.
type Builder struct {
	out *matrix.Matrix
}

// NewBuilder returns a builder over the given degree-of-freedom columns.
func NewBuilder(dof []string) *Builder {
	return &Builder{out: matrix.New(dof)}
}

// Compile adds the rows of n to the builder's matrix.
func (b *Builder) Compile(n ir.Node, term matrix.Term, lo, hi float64) error {
	return Compile(n, term, lo, hi, b.out)
}

// Len is the number of rows accumulated so far, numeric and symbolic.
func (b *Builder) Len() int {
	return len(b.out.Rows) + len(b.out.Symbolic)
}

// Matrix returns the accumulated matrix. The builder must not be used
// afterwards.
func (b *Builder) Matrix() *matrix.Matrix {
	m := b.out
	b.out = nil
	return m
}

func compile(n ir.Node, term matrix.Term, lo, hi float64, out *matrix.Matrix) error {
	switch v := n.(type) {
	case ir.Const:
		out.AddRow(term, lo, hi, v.Value)
		return nil
	case ir.Symbol:
		if ir.IsReserved(v) {
			return compileProduct([]ir.Node{v}, n, term, lo, hi, out)
		}
		out.AddSymbolic(term, lo, hi, v.Name)
		return nil
	case ir.Piecewise:
		return compilePiecewise(v, term, lo, hi, out)
	case ir.Sum:
		for _, addend := range ir.Addends(v) {
			if err := compile(addend, term, lo, hi, out); err != nil {
				return err
			}
		}
		return nil
	case ir.Product:
		return compileProduct(flattenProduct(v.Factors, nil), n, term, lo, hi, out)
	case ir.Power:
		return compileProduct([]ir.Node{v}, n, term, lo, hi, out)
	case ir.Log:
		if ir.IsReserved(v) {
			return compileProduct([]ir.Node{v}, n, term, lo, hi, out)
		}
		return newError(ErrUnsupportedNodeKind, v, "logarithm of something other than P or T")
	case nil:
		return newError(ErrUnsupportedNodeKind, nil, "missing expression")
	default:
		return newError(ErrUnsupportedNodeKind, n, "unsupported node %T", n)
	}
}

func compilePiecewise(pw ir.Piecewise, term matrix.Term, lo, hi float64, out *matrix.Matrix) error {
	branches := make([]ir.Branch, 0, len(pw.Branches))
	for _, b := range pw.Branches {
		if !ir.IsZero(b.Expr) {
			branches = append(branches, b)
		}
	}

	ivs := make([]Interval, len(branches))
	for i, b := range branches {
		iv, err := ToInterval(b.Cond)
		if err != nil {
			return err
		}
		ivs[i] = iv
	}
	if err := checkPiecewise(ivs, pw); err != nil {
		return err
	}

	for i, b := range branches {
		low := math.Max(ivs[i].Lo, lo)
		high := math.Min(ivs[i].Hi, hi)
		if !(low < high) {
			continue
		}
		if err := compile(b.Expr, term, low, high, out); err != nil {
			return err
		}
	}
	return nil
}

// compileProduct moves P, T, ln P and ln T factors into the exponent
// vector and compiles what is left with the updated term.
func compileProduct(factors []ir.Node, whole ir.Node, term matrix.Term, lo, hi float64, out *matrix.Matrix) error {
	next := term.Clone()
	coef := 1.0
	var residual []ir.Node

	for _, f := range factors {
		if col, ok := reservedColumn(f); ok {
			next.Powers[col]++
			continue
		}
		switch v := f.(type) {
		case ir.Const:
			coef *= v.Value
		case ir.Power:
			if col, ok := reservedColumn(v.Base); ok {
				next.Powers[col] += v.Exp
				continue
			}
			if c, ok := v.Base.(ir.Const); ok {
				coef *= math.Pow(c.Value, float64(v.Exp))
				continue
			}
			return newError(ErrUnsupportedBase, v, "power of %s", v.Base)
		default:
			residual = append(residual, f)
		}
	}

	if coef == 0 {
		return nil
	}

	switch len(residual) {
	case 0:
		out.AddRow(next, lo, hi, coef)
		return nil
	case 1:
		r := residual[0]
		if coef == 1 {
			return compile(r, next, lo, hi, out)
		}
		switch r.(type) {
		case ir.Sum, ir.Piecewise:
			// Distribute the numeric coefficient over every addend or branch.
			next.Scale *= coef
			return compile(r, next, lo, hi, out)
		}
	}
	return newError(ErrMalformedExpression, whole, "product does not reduce to a single term")
}

// reservedColumn maps P, T, ln P and ln T to their exponent columns.
func reservedColumn(n ir.Node) (int, bool) {
	switch v := n.(type) {
	case ir.Symbol:
		switch v.Name {
		case ir.Pressure:
			return matrix.PressureCol, true
		case ir.Temperature:
			return matrix.TemperatureCol, true
		}
	case ir.Log:
		if s, ok := v.Arg.(ir.Symbol); ok {
			switch s.Name {
			case ir.Pressure:
				return matrix.LogPressureCol, true
			case ir.Temperature:
				return matrix.LogTemperatureCol, true
			}
		}
	}
	return 0, false
}

func flattenProduct(factors []ir.Node, dst []ir.Node) []ir.Node {
	for _, f := range factors {
		if p, ok := f.(ir.Product); ok {
			dst = flattenProduct(p.Factors, dst)
			continue
		}
		dst = append(dst, f)
	}
	return dst
}
