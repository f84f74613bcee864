package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// Default top-level temperature window, lo <= T < hi.
const (
	DefaultLow  = 0.0
	DefaultHigh = 10000.0
)

// Validation error codes (E100-E199)
const (
	// Phase errors (E100-E109)
	ErrPhaseNameEmpty     = "E100" // phase name is required
	ErrPhaseNoSublattices = "E101" // phase needs at least one non-empty sublattice
	ErrDuplicatePhase     = "E102" // phase defined twice
	ErrPhaseWildcard      = "E103" // wildcard is not a phase constituent

	// Parameter errors (E110-E119)
	ErrUnknownPhase       = "E110" // parameter names an undefined phase
	ErrParameterTypeEmpty = "E111" // parameter type is required
	ErrSublatticeCount    = "E112" // constituent array does not match the phase
	ErrUnknownConstituent = "E113" // constituent not on that sublattice
	ErrEmptyConstituents  = "E114" // sublattice entry has no constituents
	ErrNegativeOrder      = "E115" // parameter order must be >= 0
	ErrDuplicateParameter = "E116" // same phase, type, constituents and order
	ErrInvalidValue       = "E117" // value does not compile
)

// ValidationError represents a database validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a database for structural problems.
// Returns all errors found (does not fail-fast).
func Validate(db *ir.Database) []ValidationError {
	errs := validatePhases(db.Phases)

	phases := make(map[string]ir.Phase, len(db.Phases))
	for _, ph := range db.Phases {
		phases[ph.Name] = ph
	}

	seen := make(map[string]int)
	for i, p := range db.Parameters {
		field := fmt.Sprintf("parameters[%d]", i)
		errs = append(errs, validateParameter(p, field, phases)...)

		// E116: duplicate (phase, type, constituents, order)
		key := fmt.Sprintf("%s;%d", p.Key(), p.ParameterOrder)
		if first, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%s duplicates parameters[%d]", p, first),
				Code:    ErrDuplicateParameter,
			})
			continue
		}
		seen[key] = i
	}
	return errs
}

func validatePhases(phases []ir.Phase) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)

	for i, ph := range phases {
		field := fmt.Sprintf("phases[%d]", i)

		// E100: name is required
		if strings.TrimSpace(ph.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "phase name is required",
				Code:    ErrPhaseNameEmpty,
			})
		}

		// E102: duplicate phase
		if names[ph.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate phase %q", ph.Name),
				Code:    ErrDuplicatePhase,
			})
		}
		names[ph.Name] = true

		// E101: at least one sublattice, none empty
		if len(ph.Sublattices) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".sublattices",
				Message: fmt.Sprintf("phase %q has no sublattices", ph.Name),
				Code:    ErrPhaseNoSublattices,
			})
		}
		for j, subl := range ph.Sublattices {
			if len(subl) == 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.sublattices[%d]", field, j),
					Message: fmt.Sprintf("phase %q has an empty sublattice", ph.Name),
					Code:    ErrPhaseNoSublattices,
				})
			}
			// E103: wildcard belongs in parameters, not phases
			if slices.Contains(subl, ir.Wildcard) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.sublattices[%d]", field, j),
					Message: "wildcard is not a constituent",
					Code:    ErrPhaseWildcard,
				})
			}
		}
	}
	return errs
}

func validateParameter(p ir.Parameter, field string, phases map[string]ir.Phase) []ValidationError {
	var errs []ValidationError

	// E111: type is required
	if strings.TrimSpace(p.ParameterType) == "" {
		errs = append(errs, ValidationError{
			Field:   field + ".parameter_type",
			Message: "parameter type is required",
			Code:    ErrParameterTypeEmpty,
		})
	}

	// E115: order must be non-negative
	if p.ParameterOrder < 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".parameter_order",
			Message: fmt.Sprintf("order %d is negative", p.ParameterOrder),
			Code:    ErrNegativeOrder,
		})
	}

	// E117: the value must compile on its own
	if err := checkValue(p.Value); err != nil {
		errs = append(errs, ValidationError{
			Field:   field + ".value",
			Message: err.Error(),
			Code:    ErrInvalidValue,
		})
	}

	// E114: every sublattice entry names something
	for j, subl := range p.ConstituentArray {
		if len(subl) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.constituent_array[%d]", field, j),
				Message: "empty constituent list",
				Code:    ErrEmptyConstituents,
			})
		}
	}

	// E110: phase must exist
	ph, ok := phases[p.PhaseName]
	if !ok {
		errs = append(errs, ValidationError{
			Field:   field + ".phase_name",
			Message: fmt.Sprintf("undefined phase %q", p.PhaseName),
			Code:    ErrUnknownPhase,
		})
		return errs
	}

	// E112: one entry per sublattice
	if len(p.ConstituentArray) != len(ph.Sublattices) {
		msg := fmt.Sprintf("%d sublattices given, phase %q has %d", len(p.ConstituentArray), ph.Name, len(ph.Sublattices))
		errs = append(errs, ValidationError{
			Field:   field + ".constituent_array",
			Message: msg,
			Code:    ErrSublatticeCount,
		})
		return errs
	}

	// E113: constituents must sit on their sublattice
	for j, subl := range p.ConstituentArray {
		if ir.IsWildcard(subl) {
			continue
		}
		for _, c := range subl {
			if !slices.Contains(ph.Sublattices[j], c) {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.constituent_array[%d]", field, j),
					Message: fmt.Sprintf("%q is not on sublattice %d of %q", c, j, ph.Name),
					Code:    ErrUnknownConstituent,
				})
			}
		}
	}
	return errs
}

// checkValue trial-compiles a parameter value over the default window.
func checkValue(v ir.Node) error {
	if v == nil {
		return fmt.Errorf("value is required")
	}
	return Compile(v, matrix.NewTerm(0), DefaultLow, DefaultHigh, matrix.New(nil))
}
