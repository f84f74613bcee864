// Package assembler builds compiled Redlich-Kister mixing terms.
//
// For every parameter a ParameterSource returns, the assembler forms the
// site-fraction part of the mixing term (sublattice products, wildcard
// sums, binary (ya-yb)^n factors and Muggianu-corrected ternary factors),
// expands it into monomials with exact rational coefficients, and compiles
// the parameter's magnitude once per monomial into a shared matrix.
//
// A ternary parameter given only at order 0 implies orders 1 and 2 with the
// same magnitude. Those records are synthesized onto the assembly's work
// queue unless the source already holds an order 1 or 2 sibling.
//
// Assemble shares no state between calls; independent assemblies may run
// in parallel.
package assembler
