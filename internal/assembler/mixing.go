package assembler

import (
	"fmt"

	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/ir"
)

// MixingTerm builds the site-fraction factor of a parameter's contribution:
//
//   - a wildcard sublattice contributes the sum of its active fractions,
//     any other sublattice the product of the named fractions;
//   - two constituents at order n > 0 add (y_a - y_b)^n;
//   - three constituents add the Muggianu-corrected fraction selected by
//     the order.
//
// The parameter magnitude is not included.
func MixingTerm(p ir.Parameter, phase ir.Phase, components []string) (ir.Node, error) {
	if len(p.ConstituentArray) > len(phase.Sublattices) {
		return nil, &compiler.CompileError{
			Kind:    compiler.ErrMalformedExpression,
			Message: fmt.Sprintf("%d sublattices given, phase %s has %d", len(p.ConstituentArray), phase.Name, len(phase.Sublattices)),
			Expr:    p.String(),
		}
	}

	var factors []ir.Node
	for i, subl := range p.ConstituentArray {
		if ir.IsWildcard(subl) {
			active := activeConstituents(phase, i, components)
			terms := make([]ir.Node, len(active))
			for j, c := range active {
				terms[j] = ir.SiteFraction(phase.Name, i, c)
			}
			factors = append(factors, ir.Add(terms...))
			continue
		}

		ys := make([]ir.Symbol, len(subl))
		for j, c := range subl {
			ys[j] = ir.SiteFraction(phase.Name, i, c)
			factors = append(factors, ys[j])
		}

		switch {
		case len(ys) == 2 && p.ParameterOrder > 0:
			factors = append(factors, ir.Pow(ir.Sub(ys[0], ys[1]), p.ParameterOrder))
		case len(ys) == 3:
			if p.ParameterOrder < 0 || p.ParameterOrder > 2 {
				return nil, &compiler.CompileError{
					Kind:    compiler.ErrMalformedExpression,
					Message: fmt.Sprintf("ternary order %d, want 0, 1 or 2", p.ParameterOrder),
					Expr:    p.String(),
				}
			}
			factors = append(factors, ir.Substitute(ys[p.ParameterOrder], MuggianuCorrection(ys)))
		}
	}
	return ir.Mul(factors...), nil
}

// isTernary reports whether any sublattice of p names three constituents.
func isTernary(p ir.Parameter) bool {
	for _, subl := range p.ConstituentArray {
		if len(subl) == 3 && !ir.IsWildcard(subl) {
			return true
		}
	}
	return false
}
