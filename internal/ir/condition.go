package ir

import (
	"fmt"
	"strings"
)

// Condition is a sealed interface over piecewise branch conditions.
//
// Condition types:
//   - Relation: Var <op> Value
//   - And: all conditions must hold
//   - Always: unconditional (the "otherwise" arm)
type Condition interface {
	condition() // Sealed
	String() string
}

// RelOp is a comparison operator.
type RelOp string

const (
	OpLT RelOp = "<"
	OpLE RelOp = "<="
	OpGT RelOp = ">"
	OpGE RelOp = ">="
)

// ValidOps lists the accepted comparison operators.
var ValidOps = map[RelOp]bool{
	OpLT: true,
	OpLE: true,
	OpGT: true,
	OpGE: true,
}

// Relation compares a variable against a literal: Var Op Value.
type Relation struct {
	Var   string
	Op    RelOp
	Value float64
}

// And is a conjunction.
type And struct {
	Conds []Condition
}

// Always holds everywhere.
type Always struct{}

func (Relation) condition() {}
func (And) condition()      {}
func (Always) condition()   {}

func (r Relation) String() string {
	return fmt.Sprintf("%s %s %s", r.Var, r.Op, FormatFloat(r.Value))
}

func (a And) String() string {
	parts := make([]string, len(a.Conds))
	for i, c := range a.Conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " & ")
}

func (Always) String() string { return "True" }

// ConditionSymbols returns the variables referenced by a condition.
func ConditionSymbols(c Condition) map[string]bool {
	out := make(map[string]bool)
	collectConditionSymbols(c, out)
	return out
}

func collectConditionSymbols(c Condition, out map[string]bool) {
	switch v := c.(type) {
	case Relation:
		out[v.Var] = true
	case And:
		for _, inner := range v.Conds {
			collectConditionSymbols(inner, out)
		}
	}
}
