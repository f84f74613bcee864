package ir

// Substitute replaces symbols by the expressions in repl, all at once.
//
// Replacement values are inserted as-is and never revisited, so a
// replacement that mentions another replaced symbol keeps the original
// symbol. Conditions are left untouched.
func Substitute(n Node, repl map[string]Node) Node {
	if len(repl) == 0 {
		return n
	}
	switch v := n.(type) {
	case Symbol:
		if r, ok := repl[v.Name]; ok {
			return r
		}
		return v
	case Sum:
		terms := make([]Node, len(v.Terms))
		for i, t := range v.Terms {
			terms[i] = Substitute(t, repl)
		}
		return Sum{Terms: terms}
	case Product:
		factors := make([]Node, len(v.Factors))
		for i, f := range v.Factors {
			factors[i] = Substitute(f, repl)
		}
		return Product{Factors: factors}
	case Power:
		return Power{Base: Substitute(v.Base, repl), Exp: v.Exp}
	case Log:
		return Log{Arg: Substitute(v.Arg, repl)}
	case Piecewise:
		branches := make([]Branch, len(v.Branches))
		for i, b := range v.Branches {
			branches[i] = Branch{Expr: Substitute(b.Expr, repl), Cond: b.Cond}
		}
		return Piecewise{Branches: branches}
	default:
		return n
	}
}

// FreeSymbols returns the names of all symbols in n, including the
// variables referenced by piecewise conditions.
func FreeSymbols(n Node) map[string]bool {
	out := make(map[string]bool)
	collectSymbols(n, out)
	return out
}

func collectSymbols(n Node, out map[string]bool) {
	switch v := n.(type) {
	case Symbol:
		out[v.Name] = true
	case Sum:
		for _, t := range v.Terms {
			collectSymbols(t, out)
		}
	case Product:
		for _, f := range v.Factors {
			collectSymbols(f, out)
		}
	case Power:
		collectSymbols(v.Base, out)
	case Log:
		collectSymbols(v.Arg, out)
	case Piecewise:
		for _, b := range v.Branches {
			collectSymbols(b.Expr, out)
			collectConditionSymbols(b.Cond, out)
		}
	}
}
