package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// ImportStats summarises one ImportDatabase call.
type ImportStats struct {
	Phases     int // phases inserted or updated
	Parameters int // new parameter records
	Duplicates int // records already stored
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ImportDatabase writes every phase and parameter of db in one transaction.
// Parameters are content-addressed, so importing the same database twice
// adds nothing the second time.
func (s *Store) ImportDatabase(ctx context.Context, db *ir.Database) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("import: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, ph := range db.Phases {
		if err := s.writePhase(ctx, tx, ph); err != nil {
			return stats, fmt.Errorf("import: %w", err)
		}
		stats.Phases++
	}

	for _, p := range db.Parameters {
		added, err := s.writeParameter(ctx, tx, p)
		if err != nil {
			return stats, fmt.Errorf("import %s: %w", p, err)
		}
		if added {
			stats.Parameters++
		} else {
			stats.Duplicates++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("import: commit: %w", err)
	}
	return stats, nil
}

// WritePhase inserts a phase, replacing the sublattices of an existing
// phase with the same name.
func (s *Store) WritePhase(ctx context.Context, ph ir.Phase) error {
	return s.writePhase(ctx, s.db, ph)
}

// WriteParameter inserts a parameter record. Uses ON CONFLICT(id) DO NOTHING
// for idempotency; reports whether the record was new.
func (s *Store) WriteParameter(ctx context.Context, p ir.Parameter) (bool, error) {
	return s.writeParameter(ctx, s.db, p)
}

func (s *Store) writePhase(ctx context.Context, ex execer, ph ir.Phase) error {
	subls, err := marshalConstituents(ph.Sublattices)
	if err != nil {
		return fmt.Errorf("write phase %s: %w", ph.Name, err)
	}

	_, err = ex.ExecContext(ctx, `
		INSERT INTO phases (name, sublattices, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET sublattices = excluded.sublattices
	`, ph.Name, subls, s.clock.Next())
	if err != nil {
		return fmt.Errorf("write phase %s: %w", ph.Name, err)
	}
	return nil
}

func (s *Store) writeParameter(ctx context.Context, ex execer, p ir.Parameter) (bool, error) {
	id, err := ir.ParameterID(p)
	if err != nil {
		return false, fmt.Errorf("write parameter: %w", err)
	}
	constituents, err := marshalConstituents(p.ConstituentArray)
	if err != nil {
		return false, fmt.Errorf("write parameter: %w", err)
	}
	expr, err := marshalExpr(p.Value)
	if err != nil {
		return false, fmt.Errorf("write parameter: %w", err)
	}

	res, err := ex.ExecContext(ctx, `
		INSERT INTO parameters
		(id, phase, param_type, constituents, param_order, expr, reference, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		p.PhaseName,
		p.ParameterType,
		constituents,
		p.ParameterOrder,
		expr,
		p.Reference,
		s.clock.Next(),
	)
	if err != nil {
		return false, fmt.Errorf("write parameter: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write parameter: %w", err)
	}
	return n > 0, nil
}

// PutCompiled stores a compiled matrix under its assembly key. A key that
// is already stored is left untouched.
func (s *Store) PutCompiled(ctx context.Context, key, phase string, m *matrix.Matrix) error {
	data, err := marshalMatrix(m)
	if err != nil {
		return fmt.Errorf("put compiled: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compiled_terms (id, assembly_key, phase, matrix, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(assembly_key) DO NOTHING
	`, s.ids.Generate(), key, phase, data, s.clock.Next())
	if err != nil {
		return fmt.Errorf("put compiled: %w", err)
	}
	return nil
}

// PurgeCompiled deletes every cached matrix and returns how many rows went.
func (s *Store) PurgeCompiled(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compiled_terms`)
	if err != nil {
		return 0, fmt.Errorf("purge compiled: %w", err)
	}
	return res.RowsAffected()
}
