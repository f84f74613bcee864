package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
	"github.com/roach88/rkc/internal/querysql"
)

var parameterColumns = []string{"phase", "param_type", "constituents", "param_order", "expr", "reference"}

// Search returns every stored parameter matching q, in import order
// (ORDER BY seq ASC, id ASC COLLATE BINARY).
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Search(ctx context.Context, q ir.Query) ([]ir.Parameter, error) {
	sel, err := querysql.ParameterQuery(q, parameterColumns...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	query, args, err := querysql.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query parameters: %w", err)
	}
	defer rows.Close()

	params := []ir.Parameter{}
	for rows.Next() {
		p, err := scanParameter(rows)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parameters: %w", err)
	}
	return params, nil
}

func scanParameter(rows *sql.Rows) (ir.Parameter, error) {
	var (
		p            ir.Parameter
		constituents string
		expr         string
	)
	if err := rows.Scan(&p.PhaseName, &p.ParameterType, &constituents, &p.ParameterOrder, &expr, &p.Reference); err != nil {
		return p, fmt.Errorf("scan parameter: %w", err)
	}

	var err error
	if p.ConstituentArray, err = unmarshalConstituents(constituents); err != nil {
		return p, err
	}
	if p.Value, err = unmarshalExpr(expr); err != nil {
		return p, fmt.Errorf("%s: %w", p, err)
	}
	return p, nil
}

// Phases returns every stored phase in import order.
func (s *Store) Phases(ctx context.Context) ([]ir.Phase, error) {
	query, args, err := querysql.Compile(querysql.Select{
		From:    "phases",
		Columns: []string{"name", "sublattices"},
		OrderBy: []string{"seq ASC", "name ASC COLLATE BINARY"},
	})
	if err != nil {
		return nil, fmt.Errorf("phases: %w", err)
	}
	return s.queryPhases(ctx, query, args...)
}

// Phase looks up one phase by name.
func (s *Store) Phase(ctx context.Context, name string) (ir.Phase, bool, error) {
	query, args, err := querysql.Compile(querysql.Select{
		From:    "phases",
		Columns: []string{"name", "sublattices"},
		Filter:  querysql.Equals{Field: "name", Value: name},
		OrderBy: []string{"name ASC COLLATE BINARY"},
	})
	if err != nil {
		return ir.Phase{}, false, fmt.Errorf("phase: %w", err)
	}
	phases, err := s.queryPhases(ctx, query, args...)
	if err != nil {
		return ir.Phase{}, false, err
	}
	if len(phases) == 0 {
		return ir.Phase{}, false, nil
	}
	return phases[0], true, nil
}

func (s *Store) queryPhases(ctx context.Context, query string, args ...any) ([]ir.Phase, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query phases: %w", err)
	}
	defer rows.Close()

	phases := []ir.Phase{}
	for rows.Next() {
		var ph ir.Phase
		var subls string
		if err := rows.Scan(&ph.Name, &subls); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		if ph.Sublattices, err = unmarshalConstituents(subls); err != nil {
			return nil, fmt.Errorf("phase %s: %w", ph.Name, err)
		}
		phases = append(phases, ph)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phases: %w", err)
	}
	return phases, nil
}

// Database reads back every phase and parameter.
func (s *Store) Database(ctx context.Context) (*ir.Database, error) {
	phases, err := s.Phases(ctx)
	if err != nil {
		return nil, err
	}
	params, err := s.Search(ctx, ir.Query{})
	if err != nil {
		return nil, err
	}
	return &ir.Database{Phases: phases, Parameters: params}, nil
}

// GetCompiled returns the matrix cached under key, if any.
func (s *Store) GetCompiled(ctx context.Context, key string) (*matrix.Matrix, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT matrix FROM compiled_terms WHERE assembly_key = ?
	`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get compiled: %w", err)
	}

	m, err := unmarshalMatrix(data)
	if err != nil {
		return nil, false, fmt.Errorf("get compiled %s: %w", key, err)
	}
	return m, true, nil
}

// CompiledCount returns the number of cached matrices.
func (s *Store) CompiledCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM compiled_terms`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count compiled: %w", err)
	}
	return n, nil
}

// CompiledInfo summarises one cached matrix.
type CompiledInfo struct {
	ID       string `json:"id"`
	Key      string `json:"assembly_key"`
	Phase    string `json:"phase"`
	Columns  int    `json:"columns"`
	Rows     int    `json:"rows"`
	Symbolic int    `json:"symbolic"`
	Seq      int64  `json:"seq"`
}

// CompiledTerms lists cached matrices in the order they were stored.
// A non-empty phase restricts the listing to that phase.
//
// Returns an empty slice (not nil) if nothing is cached.
func (s *Store) CompiledTerms(ctx context.Context, phase string) ([]CompiledInfo, error) {
	sel := querysql.Select{
		From:    "compiled_terms",
		Columns: []string{"id", "assembly_key", "phase", "matrix", "seq"},
		OrderBy: []string{"seq ASC", "id ASC COLLATE BINARY"},
	}
	if phase != "" {
		sel.Filter = querysql.Equals{Field: "phase", Value: phase}
	}
	query, args, err := querysql.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compiled terms: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query compiled terms: %w", err)
	}
	defer rows.Close()

	infos := []CompiledInfo{}
	for rows.Next() {
		var info CompiledInfo
		var data string
		if err := rows.Scan(&info.ID, &info.Key, &info.Phase, &data, &info.Seq); err != nil {
			return nil, fmt.Errorf("scan compiled term: %w", err)
		}
		m, err := unmarshalMatrix(data)
		if err != nil {
			return nil, fmt.Errorf("compiled term %s: %w", info.ID, err)
		}
		info.Columns = len(m.DOF)
		info.Rows = len(m.Rows)
		info.Symbolic = len(m.Symbolic)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compiled terms: %w", err)
	}
	return infos, nil
}
