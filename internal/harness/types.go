package harness

import "github.com/roach88/rkc/internal/matrix"

// PointResult is the outcome of one evaluation point.
type PointResult struct {
	Index int     `json:"index"`
	T     float64 `json:"T"`
	Got   float64 `json:"got"`
	Want  float64 `json:"want"`
	Pass  bool    `json:"pass"`
	Error string  `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Points holds one entry per evaluated point, in scenario order.
	Points []PointResult `json:"points"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Parameters and Synthesized count the records compiled.
	Parameters  int `json:"parameters"`
	Synthesized int `json:"synthesized"`

	// Matrix is the compiled term. Nil when assembly failed.
	Matrix *matrix.Matrix `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Points: []PointResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
