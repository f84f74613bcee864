// Package database loads thermodynamic parameter databases written in CUE
// and serves them to the assembler.
//
// A database file declares phases and parameters:
//
//	phase: LIQUID: sublattices: [["A", "B"]]
//
//	parameter: [{
//		phase:        "LIQUID"
//		type:         "L"
//		constituents: [["A", "B"]]
//		order:        1
//		value:        {add: [1000, {mul: [-2.5, "T"]}]}
//		reference:    "REF1"
//	}]
//
// Values are expressions. A number is a constant and a string a symbol.
// Structured values use a single key: add, mul, pow ({base, exp}), ln and
// piecewise (a list of {lo?, hi?, expr} branches over temperature, lo
// inclusive and hi exclusive).
//
// Names are normalised with ir.Normalize, so "liquid" and "LIQUID" are the
// same phase.
package database
