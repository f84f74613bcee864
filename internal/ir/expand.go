package ir

import "math"

// Expand normalises n into sum-of-products form: products are distributed
// over sums, non-negative integer powers of sums are multiplied out, and
// nested sums and products are flattened.
//
// Piecewise nodes are kept whole; their branches are expanded when the
// compiler descends into them. Numeric powers are folded (c**n becomes a
// constant) and powers distribute over products, so (2*T)**2 becomes 4*T**2
// in factor form.
func Expand(n Node) Node {
	terms := Addends(n)
	if len(terms) == 1 {
		return terms[0]
	}
	return Sum{Terms: terms}
}

// Addends returns the flattened, distributed addends of n. A zero
// expression yields an empty slice.
func Addends(n Node) []Node {
	switch v := n.(type) {
	case Sum:
		var out []Node
		for _, t := range v.Terms {
			out = append(out, Addends(t)...)
		}
		return out
	case Product:
		return expandProduct(v.Factors)
	case Power:
		return expandPower(v)
	case Const:
		if v.Value == 0 {
			return nil
		}
		return []Node{v}
	default:
		return []Node{n}
	}
}

// expandProduct distributes a product over the addends of its factors.
func expandProduct(factors []Node) []Node {
	// Each partial is the factor list of one addend built so far.
	partials := [][]Node{{}}
	for _, f := range factors {
		fTerms := Addends(f)
		if len(fTerms) == 0 {
			return nil
		}
		next := make([][]Node, 0, len(partials)*len(fTerms))
		for _, p := range partials {
			for _, ft := range fTerms {
				combined := make([]Node, len(p), len(p)+1)
				copy(combined, p)
				if inner, ok := ft.(Product); ok {
					combined = append(combined, inner.Factors...)
				} else {
					combined = append(combined, ft)
				}
				next = append(next, combined)
			}
		}
		partials = next
	}

	out := make([]Node, 0, len(partials))
	for _, p := range partials {
		switch len(p) {
		case 0:
			out = append(out, Const{Value: 1})
		case 1:
			out = append(out, p[0])
		default:
			out = append(out, Product{Factors: p})
		}
	}
	return out
}

// expandPower multiplies out non-negative powers of sums and folds powers of
// constants, products and powers.
func expandPower(p Power) []Node {
	if p.Exp == 0 {
		return []Node{Const{Value: 1}}
	}
	if p.Exp == 1 {
		return Addends(p.Base)
	}

	baseTerms := Addends(p.Base)
	if len(baseTerms) == 0 {
		if p.Exp > 0 {
			return nil
		}
		return []Node{p}
	}
	if len(baseTerms) > 1 {
		if p.Exp < 0 {
			return []Node{p}
		}
		repeated := make([]Node, p.Exp)
		for i := range repeated {
			repeated[i] = Sum{Terms: baseTerms}
		}
		return expandProduct(repeated)
	}

	switch b := baseTerms[0].(type) {
	case Const:
		return []Node{Const{Value: math.Pow(b.Value, float64(p.Exp))}}
	case Product:
		factors := make([]Node, len(b.Factors))
		for i, f := range b.Factors {
			factors[i] = Power{Base: f, Exp: p.Exp}
		}
		return expandProduct(factors)
	case Power:
		return expandPower(Power{Base: b.Base, Exp: b.Exp * p.Exp})
	default:
		return []Node{Power{Base: b, Exp: p.Exp}}
	}
}
