package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// marshalConstituents converts a constituent array to canonical JSON TEXT.
// Equality lookups compare this text, so it must be deterministic.
func marshalConstituents(arr [][]string) (string, error) {
	data, err := ir.MarshalConstituents(arr)
	if err != nil {
		return "", fmt.Errorf("marshal constituents: %w", err)
	}
	return data, nil
}

// unmarshalConstituents parses constituent JSON TEXT.
func unmarshalConstituents(data string) ([][]string, error) {
	var arr [][]string
	if err := json.Unmarshal([]byte(data), &arr); err != nil {
		return nil, fmt.Errorf("unmarshal constituents: %w", err)
	}
	return arr, nil
}

// marshalExpr converts an expression to canonical JSON TEXT.
func marshalExpr(n ir.Node) (string, error) {
	data, err := ir.MarshalNode(n)
	if err != nil {
		return "", fmt.Errorf("marshal expression: %w", err)
	}
	return string(data), nil
}

// unmarshalExpr parses canonical expression JSON TEXT.
func unmarshalExpr(data string) (ir.Node, error) {
	n, err := ir.UnmarshalNode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal expression: %w", err)
	}
	return n, nil
}

// marshalMatrix converts a compiled matrix to JSON TEXT.
func marshalMatrix(m *matrix.Matrix) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("marshal matrix: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unmarshalMatrix parses matrix JSON TEXT and checks its row invariants.
func unmarshalMatrix(data string) (*matrix.Matrix, error) {
	var m matrix.Matrix
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal matrix: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal matrix: %w", err)
	}
	return &m, nil
}
