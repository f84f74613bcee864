package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalNodeShapes(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"const", C(1000), `{"const":1000}`},
		{"fractional const", C(-7976.15), `{"const":-7976.15}`},
		{"symbol", T, `{"sym":"T"}`},
		{"sum", Add(C(1), T), `{"add":[{"const":1},{"sym":"T"}]}`},
		{"product", Mul(C(2), P), `{"mul":[{"const":2},{"sym":"P"}]}`},
		{"power", Pow(T, -1), `{"pow":{"base":{"sym":"T"},"exp":-1}}`},
		{"log", Ln(T), `{"ln":{"sym":"T"}}`},
		{
			"piecewise",
			Cases(Between(C(1), 298.15, 6000)),
			`{"piecewise":[{"cond":{"and":[{"rel":{"op":">=","value":298.15,"var":"T"}},{"rel":{"op":"<","value":6000,"var":"T"}}]},"expr":{"const":1}}]}`,
		},
		{"always", Cases(Branch{Expr: C(0), Cond: Always{}}), `{"piecewise":[{"cond":{"always":true},"expr":{"const":0}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalNode(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalNodeNoHTMLEscape(t *testing.T) {
	got, err := MarshalNode(S("a<b&c"))
	require.NoError(t, err)
	assert.Equal(t, `{"sym":"a<b&c"}`, string(got))
}

func TestMarshalNodeRejectsNonFinite(t *testing.T) {
	_, err := MarshalNode(Add(C(1), Const{Value: posInf()}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-finite")
}

func TestMarshalNodeRejectsNil(t *testing.T) {
	_, err := MarshalNode(Add(nil))
	require.Error(t, err)
}

func TestUnmarshalNodeInvertsMarshal(t *testing.T) {
	n := Add(
		Mul(C(137.093), T),
		Mul(C(-24.3671), T, Ln(T)),
		Pow(T, -1),
		Cases(
			Between(S("VV0001"), 298.15, 2000),
			Branch{Expr: C(0), Cond: Always{}},
		),
	)

	data := MustMarshalNode(n)
	back, err := UnmarshalNode(data)
	require.NoError(t, err)

	assert.Equal(t, n, back)
}

func TestUnmarshalNodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"two keys", `{"const":1,"sym":"T"}`, "exactly one key"},
		{"unknown key", `{"sqrt":{"sym":"T"}}`, "unknown expression key"},
		{"pow without exp", `{"pow":{"base":{"sym":"T"}}}`, "base and exp are required"},
		{"bad operator", `{"piecewise":[{"cond":{"rel":{"op":"!=","value":1,"var":"T"}},"expr":{"const":1}}]}`, "invalid operator"},
		{"nested error path", `{"add":[{"const":1},{"nope":1}]}`, "add[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalNode([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
