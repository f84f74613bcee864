package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rkc/internal/ir"
)

func validDatabase() *ir.Database {
	return &ir.Database{
		Phases: []ir.Phase{
			{Name: "LIQUID", Sublattices: [][]string{{"A", "B", "C"}}},
			{Name: "FCC_A1", Sublattices: [][]string{{"A", "B"}, {"VA"}}},
		},
		Parameters: []ir.Parameter{
			{PhaseName: "LIQUID", ParameterType: "L", ConstituentArray: [][]string{{"A", "B"}}, ParameterOrder: 0, Value: ir.C(-1000)},
			{PhaseName: "LIQUID", ParameterType: "L", ConstituentArray: [][]string{{"A", "B"}}, ParameterOrder: 1, Value: ir.Mul(ir.C(2), ir.T)},
			{PhaseName: "FCC_A1", ParameterType: "L", ConstituentArray: [][]string{{"A", "B"}, {"*"}}, ParameterOrder: 0, Value: ir.Cases(
				ir.Between(ir.C(1), 298.15, 2000),
				ir.Between(ir.C(2), 2000, 6000),
			)},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidDatabase(t *testing.T) {
	errs := Validate(validDatabase())
	assert.Empty(t, errs, "valid database should have no errors")
}

func TestValidatePhases(t *testing.T) {
	db := &ir.Database{Phases: []ir.Phase{
		{Name: "", Sublattices: [][]string{{"A"}}},
		{Name: "LIQUID"},
		{Name: "LIQUID", Sublattices: [][]string{{}}},
		{Name: "BCC", Sublattices: [][]string{{"A", "*"}}},
	}}

	errs := Validate(db)

	assert.Equal(t, []string{
		ErrPhaseNameEmpty,
		ErrPhaseNoSublattices,
		ErrDuplicatePhase,
		ErrPhaseNoSublattices,
		ErrPhaseWildcard,
	}, codes(errs))
}

func TestValidateParameterErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *ir.Parameter)
		code   string
		field  string
	}{
		{"unknown phase", func(p *ir.Parameter) { p.PhaseName = "GAS" }, ErrUnknownPhase, "parameters[0].phase_name"},
		{"missing type", func(p *ir.Parameter) { p.ParameterType = " " }, ErrParameterTypeEmpty, "parameters[0].parameter_type"},
		{"sublattice count", func(p *ir.Parameter) { p.ConstituentArray = [][]string{{"A", "B"}, {"VA"}} }, ErrSublatticeCount, "parameters[0].constituent_array"},
		{"unknown constituent", func(p *ir.Parameter) { p.ConstituentArray = [][]string{{"A", "Z"}} }, ErrUnknownConstituent, "parameters[0].constituent_array[0]"},
		{"negative order", func(p *ir.Parameter) { p.ParameterOrder = -1 }, ErrNegativeOrder, "parameters[0].parameter_order"},
		{"uncompilable value", func(p *ir.Parameter) { p.Value = ir.Pow(ir.S("x"), 2) }, ErrInvalidValue, "parameters[0].value"},
		{"missing value", func(p *ir.Parameter) { p.Value = nil }, ErrInvalidValue, "parameters[0].value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := validDatabase()
			db.Parameters = db.Parameters[:1]
			tt.mutate(&db.Parameters[0])

			errs := Validate(db)

			require.Len(t, errs, 1, "got %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateEmptyConstituentList(t *testing.T) {
	db := validDatabase()
	db.Parameters = db.Parameters[:1]
	db.Parameters[0].ConstituentArray = [][]string{{}}

	errs := Validate(db)

	assert.Contains(t, codes(errs), ErrEmptyConstituents)
}

func TestValidateDuplicateParameter(t *testing.T) {
	db := validDatabase()
	dup := db.Parameters[1].Clone()
	dup.Value = ir.C(5)
	db.Parameters = append(db.Parameters, dup)

	errs := Validate(db)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateParameter, errs[0].Code)
	assert.Equal(t, "parameters[3]", errs[0].Field)
	assert.Contains(t, errs[0].Message, "parameters[1]")
}

func TestValidateReportsAllErrors(t *testing.T) {
	db := validDatabase()
	db.Parameters[0].ParameterOrder = -1
	db.Parameters[1].PhaseName = "GAS"

	errs := Validate(db)

	assert.Equal(t, []string{ErrNegativeOrder, ErrUnknownPhase}, codes(errs))
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "parameters[0].phase_name", Message: `undefined phase "GAS"`, Code: ErrUnknownPhase}
	assert.Equal(t, `[E110] parameters[0].phase_name: undefined phase "GAS"`, e.Error())

	e.Line = 12
	assert.Equal(t, `[E110] line 12: parameters[0].phase_name: undefined phase "GAS"`, e.Error())
}
