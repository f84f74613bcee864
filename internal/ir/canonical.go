package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalNode produces the canonical JSON encoding of an expression.
// The encoding is used both for storage and for content hashing, so it is
// deterministic: object keys are sorted, strings are NFC normalised, HTML
// characters are not escaped and numbers use the shortest round-trip form.
//
// Shapes:
//
//	{"const":1000}
//	{"sym":"T"}
//	{"add":[...]}           {"mul":[...]}
//	{"pow":{"base":...,"exp":2}}
//	{"ln":...}
//	{"piecewise":[{"cond":...,"expr":...}]}
//
// Conditions encode as {"rel":{"op":"<","value":2000,"var":"T"}},
// {"and":[...]} and {"always":true}.
func MarshalNode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustMarshalNode is like MarshalNode but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustMarshalNode(n Node) []byte {
	data, err := MarshalNode(n)
	if err != nil {
		panic(err)
	}
	return data
}

func writeNode(buf *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	case Const:
		num, err := canonicalNumber(v.Value)
		if err != nil {
			return err
		}
		buf.WriteString(`{"const":`)
		buf.WriteString(num)
		buf.WriteByte('}')
	case Symbol:
		buf.WriteString(`{"sym":`)
		if err := writeString(buf, v.Name); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Sum:
		buf.WriteString(`{"add":`)
		if err := writeNodeList(buf, v.Terms); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Product:
		buf.WriteString(`{"mul":`)
		if err := writeNodeList(buf, v.Factors); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Power:
		buf.WriteString(`{"pow":{"base":`)
		if err := writeNode(buf, v.Base); err != nil {
			return err
		}
		fmt.Fprintf(buf, `,"exp":%d}}`, v.Exp)
	case Log:
		buf.WriteString(`{"ln":`)
		if err := writeNode(buf, v.Arg); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Piecewise:
		buf.WriteString(`{"piecewise":[`)
		for i, b := range v.Branches {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"cond":`)
			if err := writeCondition(buf, b.Cond); err != nil {
				return fmt.Errorf("piecewise[%d]: %w", i, err)
			}
			buf.WriteString(`,"expr":`)
			if err := writeNode(buf, b.Expr); err != nil {
				return fmt.Errorf("piecewise[%d]: %w", i, err)
			}
			buf.WriteByte('}')
		}
		buf.WriteString(`]}`)
	case nil:
		return fmt.Errorf("nil expression")
	default:
		return fmt.Errorf("unsupported node type: %T", n)
	}
	return nil
}

func writeNodeList(buf *bytes.Buffer, nodes []Node) error {
	buf.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeNode(buf, n); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeCondition(buf *bytes.Buffer, c Condition) error {
	switch v := c.(type) {
	case Relation:
		num, err := canonicalNumber(v.Value)
		if err != nil {
			return err
		}
		buf.WriteString(`{"rel":{"op":`)
		if err := writeString(buf, string(v.Op)); err != nil {
			return err
		}
		buf.WriteString(`,"value":`)
		buf.WriteString(num)
		buf.WriteString(`,"var":`)
		if err := writeString(buf, v.Var); err != nil {
			return err
		}
		buf.WriteString(`}}`)
	case And:
		buf.WriteString(`{"and":[`)
		for i, inner := range v.Conds {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCondition(buf, inner); err != nil {
				return err
			}
		}
		buf.WriteString(`]}`)
	case Always:
		buf.WriteString(`{"always":true}`)
	case nil:
		return fmt.Errorf("nil condition")
	default:
		return fmt.Errorf("unsupported condition type: %T", c)
	}
	return nil
}

// canonicalNumber renders a finite float; JSON has no NaN or infinities.
func canonicalNumber(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("non-finite number %v cannot be encoded", v)
	}
	return FormatFloat(v), nil
}

// writeString writes an NFC-normalised JSON string without HTML escaping.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false) // <, >, & must NOT be escaped
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// UnmarshalNode decodes the canonical JSON encoding of an expression.
func UnmarshalNode(data []byte) (Node, error) {
	key, body, err := singleKey(data)
	if err != nil {
		return nil, err
	}

	switch key {
	case "const":
		var v float64
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("const: %w", err)
		}
		return Const{Value: v}, nil
	case "sym":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, fmt.Errorf("sym: %w", err)
		}
		return Symbol{Name: name}, nil
	case "add":
		terms, err := unmarshalNodeList(body)
		if err != nil {
			return nil, fmt.Errorf("add%w", err)
		}
		return Sum{Terms: terms}, nil
	case "mul":
		factors, err := unmarshalNodeList(body)
		if err != nil {
			return nil, fmt.Errorf("mul%w", err)
		}
		return Product{Factors: factors}, nil
	case "pow":
		var raw struct {
			Base json.RawMessage `json:"base"`
			Exp  *int            `json:"exp"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("pow: %w", err)
		}
		if raw.Exp == nil || raw.Base == nil {
			return nil, fmt.Errorf("pow: base and exp are required")
		}
		base, err := UnmarshalNode(raw.Base)
		if err != nil {
			return nil, fmt.Errorf("pow.base: %w", err)
		}
		return Power{Base: base, Exp: *raw.Exp}, nil
	case "ln":
		arg, err := UnmarshalNode(body)
		if err != nil {
			return nil, fmt.Errorf("ln: %w", err)
		}
		return Log{Arg: arg}, nil
	case "piecewise":
		var raw []struct {
			Cond json.RawMessage `json:"cond"`
			Expr json.RawMessage `json:"expr"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("piecewise: %w", err)
		}
		branches := make([]Branch, len(raw))
		for i, r := range raw {
			cond, err := UnmarshalCondition(r.Cond)
			if err != nil {
				return nil, fmt.Errorf("piecewise[%d].cond: %w", i, err)
			}
			expr, err := UnmarshalNode(r.Expr)
			if err != nil {
				return nil, fmt.Errorf("piecewise[%d].expr: %w", i, err)
			}
			branches[i] = Branch{Expr: expr, Cond: cond}
		}
		return Piecewise{Branches: branches}, nil
	default:
		return nil, fmt.Errorf("unknown expression key %q", key)
	}
}

func unmarshalNodeList(data []byte) ([]Node, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf(": %w", err)
	}
	out := make([]Node, len(raw))
	for i, r := range raw {
		n, err := UnmarshalNode(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// UnmarshalCondition decodes the canonical JSON encoding of a condition.
func UnmarshalCondition(data []byte) (Condition, error) {
	key, body, err := singleKey(data)
	if err != nil {
		return nil, err
	}

	switch key {
	case "rel":
		var raw struct {
			Op    RelOp    `json:"op"`
			Value *float64 `json:"value"`
			Var   string   `json:"var"`
		}
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("rel: %w", err)
		}
		if !ValidOps[raw.Op] {
			return nil, fmt.Errorf("rel: invalid operator %q", raw.Op)
		}
		if raw.Value == nil || raw.Var == "" {
			return nil, fmt.Errorf("rel: var and value are required")
		}
		return Relation{Var: raw.Var, Op: raw.Op, Value: *raw.Value}, nil
	case "and":
		var raw []json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("and: %w", err)
		}
		conds := make([]Condition, len(raw))
		for i, r := range raw {
			c, err := UnmarshalCondition(r)
			if err != nil {
				return nil, fmt.Errorf("and[%d]: %w", i, err)
			}
			conds[i] = c
		}
		return And{Conds: conds}, nil
	case "always":
		return Always{}, nil
	default:
		return nil, fmt.Errorf("unknown condition key %q", key)
	}
}

// singleKey splits a one-member JSON object into its key and raw value.
func singleKey(data []byte) (string, json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, err
	}
	if len(raw) != 1 {
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", nil, fmt.Errorf("expected exactly one key, got %v", keys)
	}
	for k, v := range raw {
		return k, v, nil
	}
	return "", nil, nil
}
