package testutil

import "github.com/roach88/rkc/internal/ir"

// Param builds a parameter record with one constituent list per sublattice.
func Param(phase, typ string, order int, value ir.Node, subls ...[]string) ir.Parameter {
	return ir.Parameter{
		PhaseName:        phase,
		ParameterType:    typ,
		ConstituentArray: subls,
		ParameterOrder:   order,
		Value:            value,
	}
}

// BinaryLiquid is LIQUID(A,B) with a single order-1 interaction of 1000.
// At y = (0.3, 0.7) the mixing term is -84.
func BinaryLiquid() *ir.Database {
	return &ir.Database{
		Phases: []ir.Phase{{Name: "LIQUID", Sublattices: [][]string{{"A", "B"}}}},
		Parameters: []ir.Parameter{
			Param("LIQUID", "L", 1, ir.C(1000), []string{"A", "B"}),
		},
	}
}

// TernaryLiquid is LIQUID(A,B,C) with every binary at order 0 and one
// order-1 binary, the usual starting point for ternary completion.
func TernaryLiquid() *ir.Database {
	return &ir.Database{
		Phases: []ir.Phase{{Name: "LIQUID", Sublattices: [][]string{{"A", "B", "C"}}}},
		Parameters: []ir.Parameter{
			Param("LIQUID", "L", 0, ir.C(-1000), []string{"A", "B"}),
			Param("LIQUID", "L", 0, ir.C(500), []string{"A", "C"}),
			Param("LIQUID", "L", 0, ir.Add(ir.C(200), ir.Mul(ir.C(-0.5), ir.T)), []string{"B", "C"}),
			Param("LIQUID", "L", 1, ir.C(300), []string{"A", "B"}),
			Param("LIQUID", "L", 0, ir.C(5000), []string{"A", "B", "C"}),
		},
	}
}

// FCCAlNi is a two-sublattice FCC_A1(AL,NI)(VA) with a piecewise order-0
// interaction and a temperature-dependent order-1 term.
func FCCAlNi() *ir.Database {
	return &ir.Database{
		Phases: []ir.Phase{{Name: "FCC_A1", Sublattices: [][]string{{"AL", "NI"}, {"VA"}}}},
		Parameters: []ir.Parameter{
			Param("FCC_A1", "L", 0, ir.Cases(
				ir.Between(ir.Add(ir.C(-162407.75), ir.Mul(ir.C(16.212965), ir.T)), 298.15, 2000),
				ir.Between(ir.C(-130000), 2000, 6000),
			), []string{"AL", "NI"}, []string{"VA"}),
			Param("FCC_A1", "L", 1, ir.Add(ir.C(73417.798), ir.Mul(ir.C(-34.914168), ir.T)), []string{"AL", "NI"}, []string{"VA"}),
		},
	}
}
