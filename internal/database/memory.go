package database

import (
	"context"
	"sync"

	"github.com/roach88/rkc/internal/ir"
)

// Memory serves a loaded database as a parameter source.
// Safe for concurrent use; Replace swaps the whole database atomically.
type Memory struct {
	mu sync.RWMutex
	db *ir.Database
}

// NewMemory wraps db. A nil db is treated as empty.
func NewMemory(db *ir.Database) *Memory {
	if db == nil {
		db = &ir.Database{}
	}
	return &Memory{db: db}
}

// Search returns copies of every parameter matching q, in database order.
func (m *Memory) Search(ctx context.Context, q ir.Query) ([]ir.Parameter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ir.Parameter
	for _, p := range m.db.Parameters {
		if q.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// Phase looks up a phase by name.
func (m *Memory) Phase(name string) (ir.Phase, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db.Phase(ir.Normalize(name))
}

// Phases returns the declared phases.
func (m *Memory) Phases() []ir.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ir.Phase, len(m.db.Phases))
	for i, ph := range m.db.Phases {
		out[i] = ir.Phase{Name: ph.Name, Sublattices: ir.CloneConstituents(ph.Sublattices)}
	}
	return out
}

// Len returns the number of parameter records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.db.Parameters)
}

// Replace swaps in a new database.
func (m *Memory) Replace(db *ir.Database) {
	if db == nil {
		db = &ir.Database{}
	}
	m.mu.Lock()
	m.db = db
	m.mu.Unlock()
}
