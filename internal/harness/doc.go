// Package harness runs conformance scenarios against compiled mixing terms.
//
// A scenario names a CUE parameter database, a phase, the active
// components and a parameter type. The harness loads the database, assembles
// the term and evaluates it at each listed point.
//
// # Scenario Format
//
//	name: binary_subregular
//	description: "L1 = 1000 on LIQUID(A,B)"
//	database: ../databases/binary.cue   # relative to the scenario file
//	phase: LIQUID
//	components: [A, B]
//	type: L
//	window: [0, 6000]                   # optional, lo <= T < hi
//	points:
//	  - T: 1000
//	    P: 101325
//	    y: { A: 0.3, B: 0.7 }
//	    expect: -84
//	  - T: 7000
//	    y: { A: 0.3, B: 0.7 }
//	    strict: true
//	    expect_error: "no applicable temperature interval"
//
// Composition keys are matched against the full site-fraction name
// (Y(LIQUID,0,A)), then "sublattice:component" (0:A), then the bare
// component. Points with a symbols map evaluate symbolic rows too.
//
// A scenario may instead set expect_error to a compile error kind such as
// OVERLAPPING_INTERVAL; assembly must then fail with that kind.
//
// # Golden Files
//
// The compiled matrix text (see matrix.WriteText) can be compared against
// testdata/golden/{name}.golden. To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
