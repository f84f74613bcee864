package assembler

import (
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/ir"
)

// Monomial is coef * Π y_i^Exps[i] over the degree-of-freedom columns.
type Monomial struct {
	Exps []int
	Coef *big.Rat
}

// Expand multiplies out an expression over site fractions into monomials
// with exact coefficients. Monomials are ordered by exponent vector,
// highest first; zero monomials are dropped.
//
// Only constants, fractions in dof, sums, products and integer powers are
// accepted. A negative power is allowed on a constant only.
func Expand(n ir.Node, dof DOF) ([]Monomial, error) {
	p, err := toPoly(n, dof)
	if err != nil {
		return nil, err
	}
	return p.monomials(), nil
}

// poly is a sparse polynomial keyed by its exponent vectors.
type poly struct {
	vars  int
	terms map[string]Monomial
}

func newPoly(vars int) *poly {
	return &poly{vars: vars, terms: make(map[string]Monomial)}
}

func constPoly(vars int, r *big.Rat) *poly {
	p := newPoly(vars)
	p.addTerm(make([]int, vars), r)
	return p
}

func varPoly(vars, i int) *poly {
	exps := make([]int, vars)
	exps[i] = 1
	p := newPoly(vars)
	p.addTerm(exps, big.NewRat(1, 1))
	return p
}

func expsKey(exps []int) string {
	var sb strings.Builder
	for i, e := range exps {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(e))
	}
	return sb.String()
}

// addTerm accumulates coef*y^exps into p. p takes ownership of exps.
func (p *poly) addTerm(exps []int, coef *big.Rat) {
	key := expsKey(exps)
	if m, ok := p.terms[key]; ok {
		sum := new(big.Rat).Add(m.Coef, coef)
		if sum.Sign() == 0 {
			delete(p.terms, key)
			return
		}
		p.terms[key] = Monomial{Exps: m.Exps, Coef: sum}
		return
	}
	if coef.Sign() == 0 {
		return
	}
	p.terms[key] = Monomial{Exps: exps, Coef: new(big.Rat).Set(coef)}
}

func (p *poly) add(q *poly) *poly {
	out := newPoly(p.vars)
	for _, m := range p.terms {
		out.addTerm(slices.Clone(m.Exps), m.Coef)
	}
	for _, m := range q.terms {
		out.addTerm(slices.Clone(m.Exps), m.Coef)
	}
	return out
}

func (p *poly) mul(q *poly) *poly {
	out := newPoly(p.vars)
	for _, a := range p.terms {
		for _, b := range q.terms {
			exps := make([]int, p.vars)
			for i := range exps {
				exps[i] = a.Exps[i] + b.Exps[i]
			}
			out.addTerm(exps, new(big.Rat).Mul(a.Coef, b.Coef))
		}
	}
	return out
}

func (p *poly) pow(k int) *poly {
	out := constPoly(p.vars, big.NewRat(1, 1))
	for i := 0; i < k; i++ {
		out = out.mul(p)
	}
	return out
}

// constant returns the value of a polynomial with no variable terms.
func (p *poly) constant() (*big.Rat, bool) {
	switch len(p.terms) {
	case 0:
		return new(big.Rat), true
	case 1:
		for _, m := range p.terms {
			for _, e := range m.Exps {
				if e != 0 {
					return nil, false
				}
			}
			return m.Coef, true
		}
	}
	return nil, false
}

func (p *poly) monomials() []Monomial {
	out := make([]Monomial, 0, len(p.terms))
	for _, m := range p.terms {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Monomial) int {
		return -slices.Compare(a.Exps, b.Exps)
	})
	return out
}

func toPoly(n ir.Node, dof DOF) (*poly, error) {
	vars := dof.Len()
	switch v := n.(type) {
	case ir.Const:
		r := new(big.Rat)
		if r.SetFloat64(v.Value) == nil {
			return nil, &compiler.CompileError{
				Kind:    compiler.ErrUnsupportedNodeKind,
				Message: "non-finite constant",
				Expr:    v.String(),
			}
		}
		return constPoly(vars, r), nil
	case ir.Symbol:
		i, ok := dof.Index(v.Name)
		if !ok {
			return nil, &compiler.CompileError{
				Kind:    compiler.ErrMissingDegreeOfFreedom,
				Message: "symbol is not a degree of freedom",
				Expr:    v.Name,
			}
		}
		return varPoly(vars, i), nil
	case ir.Sum:
		out := newPoly(vars)
		for _, t := range v.Terms {
			p, err := toPoly(t, dof)
			if err != nil {
				return nil, err
			}
			out = out.add(p)
		}
		return out, nil
	case ir.Product:
		out := constPoly(vars, big.NewRat(1, 1))
		for _, f := range v.Factors {
			p, err := toPoly(f, dof)
			if err != nil {
				return nil, err
			}
			out = out.mul(p)
		}
		return out, nil
	case ir.Power:
		base, err := toPoly(v.Base, dof)
		if err != nil {
			return nil, err
		}
		if v.Exp >= 0 {
			return base.pow(v.Exp), nil
		}
		c, ok := base.constant()
		if !ok || c.Sign() == 0 {
			return nil, &compiler.CompileError{
				Kind:    compiler.ErrUnsupportedBase,
				Message: "negative power of a non-constant",
				Expr:    v.String(),
			}
		}
		return constPoly(vars, new(big.Rat).Inv(c)).pow(-v.Exp), nil
	case nil:
		return nil, &compiler.CompileError{Kind: compiler.ErrUnsupportedNodeKind, Message: "missing expression"}
	default:
		return nil, &compiler.CompileError{
			Kind:    compiler.ErrUnsupportedNodeKind,
			Message: "not a polynomial in site fractions",
			Expr:    n.String(),
		}
	}
}
