// Package matrix holds compiled mixing terms and evaluates them.
//
// A compiled term is a list of rows. Each numeric row is
//
//	[T_low, T_high, p, T, lnP, lnT, y_1..y_k, scale, coef]
//
// where p, T, lnP and lnT are integer exponents of pressure, temperature and
// their natural logarithms, y_i are exponents of the degree-of-freedom
// columns, and the row's value is the power product times scale times coef.
// A row applies when T_low <= T < T_high.
//
// Symbolic rows have the same shape but carry a symbol name in place of
// coef. They are kept apart from numeric rows and only contribute through
// EvalWith.
//
// A Matrix is read-only once built. Evaluation is stateless and safe for
// concurrent use.
package matrix
