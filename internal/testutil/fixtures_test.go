package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/rkc/internal/compiler"
)

func TestFixturesValidate(t *testing.T) {
	assert.Empty(t, compiler.Validate(BinaryLiquid()))
	assert.Empty(t, compiler.Validate(TernaryLiquid()))
	assert.Empty(t, compiler.Validate(FCCAlNi()))
}

func TestFixturesAreFresh(t *testing.T) {
	a := BinaryLiquid()
	a.Parameters[0].ParameterOrder = 7

	assert.Equal(t, 1, BinaryLiquid().Parameters[0].ParameterOrder)
}
