// Package querysql compiles parameter lookups to parameterized SQL for
// SQLite.
//
// Every query carries an ORDER BY with a deterministic tiebreaker, and no
// value is ever interpolated into the SQL text.
package querysql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/rkc/internal/ir"
)

// Predicate is a sealed WHERE-clause fragment.
type Predicate interface {
	predicate()
}

// Equals matches rows whose Field equals Value.
type Equals struct {
	Field string
	Value any
}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

// WithinComponents matches rows whose Field, a JSON constituent array,
// names only species in Components. Wildcard entries always pass.
type WithinComponents struct {
	Field      string
	Components []string
}

func (Equals) predicate()           {}
func (And) predicate()              {}
func (WithinComponents) predicate() {}

// Select is a single-table query.
type Select struct {
	From    string
	Columns []string // empty selects *
	Filter  Predicate
	OrderBy []string // defaults to "id ASC COLLATE BINARY"
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error).
func Compile(s Select) (string, []any, error) {
	if !identRe.MatchString(s.From) {
		return "", nil, fmt.Errorf("invalid table name %q", s.From)
	}

	columns := "*"
	if len(s.Columns) > 0 {
		for _, c := range s.Columns {
			if !identRe.MatchString(c) {
				return "", nil, fmt.Errorf("invalid column name %q", c)
			}
		}
		columns = strings.Join(s.Columns, ", ")
	}

	var where string
	var params []any
	if s.Filter != nil {
		sql, p, err := compilePredicate(s.From, s.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		where = " WHERE " + sql
		params = p
	}

	return fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s", columns, s.From, where, stableOrderKey(s)), params, nil
}

// stableOrderKey returns the ORDER BY clause. COLLATE BINARY keeps text
// ordering identical across SQLite versions.
func stableOrderKey(s Select) string {
	if len(s.OrderBy) == 0 {
		return "id ASC COLLATE BINARY"
	}
	return strings.Join(s.OrderBy, ", ")
}

func compilePredicate(table string, p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		if !identRe.MatchString(pred.Field) {
			return "", nil, fmt.Errorf("invalid field name %q", pred.Field)
		}
		return pred.Field + " = ?", []any{pred.Value}, nil
	case And:
		return compileAnd(table, pred)
	case WithinComponents:
		return compileWithin(table, pred)
	case nil:
		return "1 = 1", nil, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileAnd(table string, and And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var parts []string
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := compilePredicate(table, pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// compileWithin walks the nested JSON array with json_each and rejects any
// row naming a species outside the list.
func compileWithin(table string, w WithinComponents) (string, []any, error) {
	if !identRe.MatchString(w.Field) {
		return "", nil, fmt.Errorf("invalid field name %q", w.Field)
	}
	if len(w.Components) == 0 {
		return "1 = 1", nil, nil
	}

	params := []any{ir.Wildcard}
	marks := make([]string, len(w.Components))
	for i, c := range w.Components {
		marks[i] = "?"
		params = append(params, c)
	}

	sql := fmt.Sprintf(
		"NOT EXISTS (SELECT 1 FROM json_each(%s.%s) AS subl, json_each(subl.value) AS c WHERE c.value <> ? AND c.value NOT IN (%s))",
		table, w.Field, strings.Join(marks, ", "))
	return sql, params, nil
}

// ParameterQuery translates an ir.Query into a Select over the parameters
// table. Constituent arrays compare by their canonical JSON.
func ParameterQuery(q ir.Query, columns ...string) (Select, error) {
	var preds []Predicate
	if q.PhaseName != "" {
		preds = append(preds, Equals{Field: "phase", Value: q.PhaseName})
	}
	if q.ParameterType != "" {
		preds = append(preds, Equals{Field: "param_type", Value: q.ParameterType})
	}
	if q.ConstituentArray != nil {
		key, err := ir.MarshalConstituents(q.ConstituentArray)
		if err != nil {
			return Select{}, fmt.Errorf("constituent array: %w", err)
		}
		preds = append(preds, Equals{Field: "constituents", Value: key})
	}
	if len(q.Components) > 0 {
		preds = append(preds, WithinComponents{Field: "constituents", Components: q.Components})
	}

	s := Select{
		From:    "parameters",
		Columns: columns,
		OrderBy: []string{"seq ASC", "id ASC COLLATE BINARY"},
	}
	if len(preds) > 0 {
		s.Filter = And{Predicates: preds}
	}
	return s, nil
}
