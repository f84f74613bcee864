package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/matrix"
)

// ParameterSource looks up parameter records. Implementations must treat
// the query as a pure predicate; no ordering is assumed.
type ParameterSource interface {
	Search(ctx context.Context, q ir.Query) ([]ir.Parameter, error)
}

// Cache stores compiled matrices by assembly key.
type Cache interface {
	GetCompiled(ctx context.Context, key string) (*matrix.Matrix, bool, error)
	PutCompiled(ctx context.Context, key, phase string, m *matrix.Matrix) error
}

// Assembler compiles mixing terms. It holds only configuration and may be
// shared between goroutines.
type Assembler struct {
	low, high float64
	logger    *slog.Logger
	cache     Cache
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithWindow sets the top-level temperature window, lo <= T < hi.
//
// Default: [compiler.DefaultLow, compiler.DefaultHigh)
func WithWindow(lo, hi float64) Option {
	return func(a *Assembler) {
		a.low, a.high = lo, hi
	}
}

// WithLogger sets the logger for per-parameter debug events.
//
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// WithCache reuses compiled matrices whose assembly key is unchanged.
func WithCache(c Cache) Option {
	return func(a *Assembler) {
		a.cache = c
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		low:    compiler.DefaultLow,
		high:   compiler.DefaultHigh,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Window returns the configured temperature window.
func (a *Assembler) Window() (lo, hi float64) { return a.low, a.high }

// Assemble compiles every parameter src returns for q into one matrix over
// the degree-of-freedom columns of phase restricted to components.
//
// An empty q.PhaseName defaults to the phase; empty q.Components defaults
// to components, so records naming an inactive species are not read.
// The first parameter that fails aborts the assembly.
func (a *Assembler) Assemble(ctx context.Context, components []string, phase ir.Phase, src ParameterSource, q ir.Query) (*CompiledTerm, error) {
	if !(a.low < a.high) {
		return nil, fmt.Errorf("assemble: empty window [%v, %v)", a.low, a.high)
	}

	comps := slices.Clone(components)
	slices.Sort(comps)
	comps = slices.Compact(comps)

	dof := BuildDOF(phase, comps)
	if q.PhaseName == "" {
		q.PhaseName = phase.Name
	}
	if len(q.Components) == 0 {
		q.Components = comps
	}

	params, err := src.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search parameters: %w", err)
	}

	term := &CompiledTerm{
		Phase:      phase.Name,
		Components: comps,
		DOF:        dof,
	}

	if a.cache != nil {
		key, err := ir.AssemblyKey(phase, comps, q, params, a.low, a.high)
		if err != nil {
			return nil, fmt.Errorf("assembly key: %w", err)
		}
		term.Key = key

		m, ok, err := a.cache.GetCompiled(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read compiled cache: %w", err)
		}
		if ok {
			if !slices.Equal(m.DOF, dof.Names()) {
				return nil, fmt.Errorf("compiled cache %s: columns %v, want %v", key, m.DOF, dof.Names())
			}
			a.logger.Debug("compiled term loaded from cache", "phase", phase.Name, "key", key, "rows", m.Len())
			term.Matrix = m
			term.Parameters = params
			term.Cached = true
			return term, nil
		}
	}

	b := compiler.NewBuilder(dof.Names())
	queue := newWorkQueue(params)
	for {
		p, ok := queue.TryDequeue()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if p.ParameterOrder == 0 && isTernary(p) {
			implied, err := impliedTernaries(ctx, src, p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			for _, s := range implied {
				queue.Enqueue(s)
				term.Synthesized = append(term.Synthesized, s)
			}
			if len(implied) > 0 {
				a.logger.Debug("ternary parameters synthesized", "parameter", p.String(), "count", len(implied))
			}
		}

		rows := b.Len()
		if err := a.compileParameter(b, p, phase, comps, dof); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		term.Parameters = append(term.Parameters, p)

		a.logger.Debug("parameter compiled",
			"parameter", p.String(),
			"rows", b.Len()-rows,
		)
	}

	term.Matrix = b.Matrix()

	if a.cache != nil {
		if err := a.cache.PutCompiled(ctx, term.Key, phase.Name, term.Matrix); err != nil {
			return nil, fmt.Errorf("write compiled cache: %w", err)
		}
	}
	return term, nil
}

// compileParameter expands the mixing term of p and compiles its magnitude
// once per monomial, carrying the monomial's exponents and coefficient.
func (a *Assembler) compileParameter(b *compiler.Builder, p ir.Parameter, phase ir.Phase, comps []string, dof DOF) error {
	if p.Value == nil {
		return &compiler.CompileError{Kind: compiler.ErrUnsupportedNodeKind, Message: "parameter has no value", Expr: p.String()}
	}
	mix, err := MixingTerm(p, phase, comps)
	if err != nil {
		return err
	}
	monos, err := Expand(mix, dof)
	if err != nil {
		return err
	}
	for _, mono := range monos {
		t := matrix.NewTerm(dof.Len())
		copy(t.Powers[matrix.NumReserved:], mono.Exps)
		t.Scale, _ = mono.Coef.Float64()
		if err := b.Compile(p.Value, t, a.low, a.high); err != nil {
			return err
		}
	}
	return nil
}

// impliedTernaries returns the order 1 and 2 copies of an order 0 ternary
// parameter, or nothing when the source already has either sibling.
func impliedTernaries(ctx context.Context, src ParameterSource, p ir.Parameter) ([]ir.Parameter, error) {
	siblings, err := src.Search(ctx, ir.SiblingQuery(p))
	if err != nil {
		return nil, fmt.Errorf("search siblings: %w", err)
	}
	for _, s := range siblings {
		if s.ParameterOrder == 1 || s.ParameterOrder == 2 {
			return nil, nil
		}
	}

	one := p.Clone()
	one.ParameterOrder = 1
	two := p.Clone()
	two.ParameterOrder = 2
	return []ir.Parameter{one, two}, nil
}
