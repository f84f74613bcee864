package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"al", "AL"},
		{"  Fcc_A1 ", "FCC_A1"},
		{"*", "*"},
		{"va", "VA"},
		// Decomposed e + combining acute composes under NFC before upper-casing.
		{"e\u0301", "\u00c9"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeParameterDoesNotMutateInput(t *testing.T) {
	p := Parameter{
		PhaseName:        "liquid",
		ParameterType:    "l",
		ConstituentArray: [][]string{{"al", "cr"}},
		Value:            C(1),
	}

	got := NormalizeParameter(p)

	assert.Equal(t, "LIQUID", got.PhaseName)
	assert.Equal(t, "L", got.ParameterType)
	assert.Equal(t, [][]string{{"AL", "CR"}}, got.ConstituentArray)
	assert.Equal(t, [][]string{{"al", "cr"}}, p.ConstituentArray)
}

func TestNormalizePhase(t *testing.T) {
	ph := NormalizePhase(Phase{Name: "bcc_a2", Sublattices: [][]string{{"fe", "cr"}, {"va"}}})

	assert.Equal(t, "BCC_A2", ph.Name)
	assert.Equal(t, [][]string{{"FE", "CR"}, {"VA"}}, ph.Sublattices)
}
