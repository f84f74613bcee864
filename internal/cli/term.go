package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/assembler"
	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/database"
	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/store"
)

// TermOptions selects the mixing term to assemble. Shared by compile, eval
// and watch.
type TermOptions struct {
	Phase      string
	Components []string
	Type       string
	Low, High  float64
	Store      string // SQLite store path (--db)
}

// commandError tags an error with the code reported to the user.
type commandError struct {
	Code string
	Err  error
}

func (e *commandError) Error() string { return e.Err.Error() }
func (e *commandError) Unwrap() error { return e.Err }

func addTermFlags(cmd *cobra.Command, t *TermOptions, withStore bool) {
	cmd.Flags().StringVar(&t.Phase, "phase", "", "phase name (required)")
	_ = cmd.MarkFlagRequired("phase")
	cmd.Flags().StringSliceVar(&t.Components, "components", nil, "active components, e.g. AL,NI,VA (required)")
	_ = cmd.MarkFlagRequired("components")
	cmd.Flags().StringVar(&t.Type, "type", "", "parameter type, e.g. L (default: every type)")
	cmd.Flags().Float64Var(&t.Low, "tmin", compiler.DefaultLow, "lower temperature bound (inclusive)")
	cmd.Flags().Float64Var(&t.High, "tmax", compiler.DefaultHigh, "upper temperature bound (exclusive)")
	if withStore {
		cmd.Flags().StringVar(&t.Store, "db", "", "SQLite store used as compiled-term cache; the parameter source when no database path is given")
	}
}

// assembleTerm compiles the term selected by t. With a database path the
// parameters come from the CUE files; otherwise from the --db store. A
// configured store also caches the compiled matrix.
func assembleTerm(ctx context.Context, t *TermOptions, path string, logger *slog.Logger) (*assembler.CompiledTerm, error) {
	if path == "" && t.Store == "" {
		return nil, &commandError{Code: ErrCodeUsage, Err: errors.New("a database path or --db is required")}
	}

	opts := []assembler.Option{
		assembler.WithWindow(t.Low, t.High),
		assembler.WithLogger(logger),
	}

	var (
		src   assembler.ParameterSource
		phase ir.Phase
		found bool
	)

	if path != "" {
		db, err := database.Load(path)
		if err != nil {
			return nil, err
		}
		src = database.NewMemory(db)
		phase, found = db.Phase(ir.Normalize(t.Phase))
	}

	if t.Store != "" {
		st, err := store.Open(t.Store)
		if err != nil {
			return nil, &commandError{Code: ErrCodeStore, Err: err}
		}
		defer st.Close()
		opts = append(opts, assembler.WithCache(st))

		if src == nil {
			src = st
			phase, found, err = st.Phase(ctx, ir.Normalize(t.Phase))
			if err != nil {
				return nil, &commandError{Code: ErrCodeStore, Err: err}
			}
		}
	}

	if !found {
		return nil, &commandError{Code: ErrCodeUsage, Err: fmt.Errorf("phase %s not found", ir.Normalize(t.Phase))}
	}

	components := ir.NormalizeAll(append([]string(nil), t.Components...))
	q := ir.Query{ParameterType: ir.Normalize(t.Type)}

	term, err := assembler.New(opts...).Assemble(ctx, components, phase, src, q)
	if err != nil {
		return nil, &commandError{Code: ErrCodeCompile, Err: err}
	}
	return term, nil
}

// errorCode picks the code for err: a load error's own code, a compile
// error kind, or the tag set by commandError.
func errorCode(err error) string {
	var loadErr *database.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	var cmdErr *commandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code
	}
	return database.ErrCodeGeneric
}

// outputCommandError reports err and maps it to an exit code: compile and
// load problems are command errors (exit 2).
func outputCommandError(formatter *OutputFormatter, err error) error {
	code := errorCode(err)
	var details interface{}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		details = map[string]string{"kind": string(compileErr.Kind), "expr": compileErr.Expr}
	}
	_ = formatter.Error(code, err.Error(), details)
	return WrapExitError(ExitCommandError, code, err)
}
