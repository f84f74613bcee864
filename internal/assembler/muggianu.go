package assembler

import "github.com/roach88/rkc/internal/ir"

// MuggianuCorrection maps every fraction y_i to y_i + (1 - Σy_j)/m, where
// the sum runs over the m given fractions. The replacements are meant to be
// applied together with ir.Substitute.
func MuggianuCorrection(fractions []ir.Symbol) map[string]ir.Node {
	m := len(fractions)
	if m == 0 {
		return nil
	}
	ys := make([]ir.Node, m)
	for i, y := range fractions {
		ys[i] = y
	}
	excess := ir.Mul(ir.Sub(ir.C(1), ir.Add(ys...)), ir.Pow(ir.C(float64(m)), -1))

	out := make(map[string]ir.Node, m)
	for _, y := range fractions {
		out[y.Name] = ir.Add(y, excess)
	}
	return out
}
