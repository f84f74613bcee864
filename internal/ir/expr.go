package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved symbol names. Every other symbol is either a site fraction or an
// externally supplied magnitude.
const (
	Pressure    = "P"
	Temperature = "T"
)

// Node is a sealed interface over the closed expression grammar:
// Const, Symbol, Sum, Product, Power, Log and Piecewise.
//
// The marker method prevents external implementations and enables
// exhaustive type switches in the compiler and the polynomial expander.
type Node interface {
	node() // Sealed
	String() string
}

// Const is a numeric literal.
type Const struct {
	Value float64
}

// Symbol is a named variable.
type Symbol struct {
	Name string
}

// Sum is the sum of its terms. An empty sum is zero.
type Sum struct {
	Terms []Node
}

// Product is the product of its factors. An empty product is one.
type Product struct {
	Factors []Node
}

// Power raises Base to a fixed integer exponent.
type Power struct {
	Base Node
	Exp  int
}

// Log is the natural logarithm of Arg.
type Log struct {
	Arg Node
}

// Branch is one (expression, condition) arm of a Piecewise.
type Branch struct {
	Expr Node
	Cond Condition
}

// Piecewise selects the first branch whose condition holds.
type Piecewise struct {
	Branches []Branch
}

func (Const) node()     {}
func (Symbol) node()    {}
func (Sum) node()       {}
func (Product) node()   {}
func (Power) node()     {}
func (Log) node()       {}
func (Piecewise) node() {}

// C builds a constant.
func C(v float64) Const { return Const{Value: v} }

// S builds a symbol.
func S(name string) Symbol { return Symbol{Name: name} }

// P and T are the reserved state variables.
var (
	P = Symbol{Name: Pressure}
	T = Symbol{Name: Temperature}
)

// Add builds a sum. Nested sums are kept as given; use Expand to flatten.
func Add(terms ...Node) Sum { return Sum{Terms: terms} }

// Mul builds a product.
func Mul(factors ...Node) Product { return Product{Factors: factors} }

// Pow builds an integer power.
func Pow(base Node, exp int) Power { return Power{Base: base, Exp: exp} }

// Ln builds a natural logarithm.
func Ln(arg Node) Log { return Log{Arg: arg} }

// Sub builds a - b as a + (-1)*b.
func Sub(a, b Node) Sum { return Sum{Terms: []Node{a, Product{Factors: []Node{Const{Value: -1}, b}}}} }

// Cases builds a piecewise expression from alternating branches.
func Cases(branches ...Branch) Piecewise { return Piecewise{Branches: branches} }

// Between is the usual database branch: lo <= T < hi.
func Between(expr Node, lo, hi float64) Branch {
	return Branch{
		Expr: expr,
		Cond: And{Conds: []Condition{
			Relation{Var: Temperature, Op: OpGE, Value: lo},
			Relation{Var: Temperature, Op: OpLT, Value: hi},
		}},
	}
}

// IsReserved reports whether n is P, T, ln(P) or ln(T).
func IsReserved(n Node) bool {
	switch v := n.(type) {
	case Symbol:
		return v.Name == Pressure || v.Name == Temperature
	case Log:
		s, ok := v.Arg.(Symbol)
		return ok && (s.Name == Pressure || s.Name == Temperature)
	}
	return false
}

// IsZero reports whether n is the constant zero.
func IsZero(n Node) bool {
	c, ok := n.(Const)
	return ok && c.Value == 0
}

// FormatFloat renders a float in the shortest round-trip form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c Const) String() string { return FormatFloat(c.Value) }

func (s Symbol) String() string { return s.Name }

func (s Sum) String() string {
	if len(s.Terms) == 0 {
		return "0"
	}
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (p Product) String() string {
	if len(p.Factors) == 0 {
		return "1"
	}
	parts := make([]string, len(p.Factors))
	for i, f := range p.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, "*")
}

func (p Power) String() string {
	return fmt.Sprintf("%s**%d", p.Base.String(), p.Exp)
}

func (l Log) String() string { return "ln(" + l.Arg.String() + ")" }

func (p Piecewise) String() string {
	parts := make([]string, len(p.Branches))
	for i, b := range p.Branches {
		parts[i] = fmt.Sprintf("(%s, %s)", b.Expr.String(), b.Cond.String())
	}
	return "Piecewise(" + strings.Join(parts, ", ") + ")"
}
