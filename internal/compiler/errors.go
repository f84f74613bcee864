package compiler

import (
	"errors"
	"fmt"
)

// CompileError is raised when an expression cannot be lowered into matrix
// rows. None of these are recoverable by retrying; the input model must be
// fixed.
type CompileError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description.
	Message string

	// Expr is the offending sub-expression rendered as text.
	Expr string
}

// ErrorKind categorizes compile errors.
type ErrorKind string

const (
	// ErrUnsupportedCondition: a piecewise condition is not a bound on T.
	ErrUnsupportedCondition ErrorKind = "UNSUPPORTED_CONDITION"

	// ErrOverlappingInterval: two piecewise branches share temperatures.
	ErrOverlappingInterval ErrorKind = "OVERLAPPING_INTERVAL"

	// ErrDiscontinuousPiecewise: the branch intervals leave a gap.
	ErrDiscontinuousPiecewise ErrorKind = "DISCONTINUOUS_PIECEWISE"

	// ErrUnsupportedBase: a power whose base is not P, T, ln P or ln T.
	ErrUnsupportedBase ErrorKind = "UNSUPPORTED_BASE"

	// ErrMalformedExpression: the residual of a product is not a single term.
	ErrMalformedExpression ErrorKind = "MALFORMED_EXPRESSION"

	// ErrMissingDegreeOfFreedom: a monomial mentions a fraction that is not
	// a matrix column.
	ErrMissingDegreeOfFreedom ErrorKind = "MISSING_DEGREE_OF_FREEDOM"

	// ErrUnsupportedNodeKind: anything outside the closed grammar.
	ErrUnsupportedNodeKind ErrorKind = "UNSUPPORTED_NODE_KIND"
)

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Expr)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a CompileError of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// newError builds a CompileError naming the offending expression.
func newError(kind ErrorKind, expr fmt.Stringer, format string, args ...any) *CompileError {
	e := &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if expr != nil {
		e.Expr = expr.String()
	}
	return e
}
