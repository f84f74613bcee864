package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/assembler"
	"github.com/roach88/rkc/internal/matrix"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	TermOptions
	Output string // output file path
}

// CompilationResult is the JSON form of one compiled term.
type CompilationResult struct {
	Phase       string         `json:"phase"`
	Components  []string       `json:"components"`
	Key         string         `json:"assembly_key,omitempty"`
	Cached      bool           `json:"cached"`
	Parameters  []string       `json:"parameters"`
	Synthesized []string       `json:"synthesized"`
	Matrix      *matrix.Matrix `json:"matrix"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [database]",
		Short: "Compile a mixing term to a coefficient matrix",
		Long: `Assemble every parameter of one phase and type into a single
coefficient matrix over the active components.

The database is a .cue file or a directory of them. Without one, the
parameters are read from the --db store. With --db the compiled matrix
is cached under its assembly key and reused while the inputs are unchanged.

Examples:
  rkc compile ./alni.cue --phase LIQUID --components AL,NI --type L
  rkc compile ./db --phase FCC_A1 --components AL,NI,VA --type L -o term.json
  rkc compile --db ./rkc.db --phase LIQUID --components AL,NI --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runCompile(opts, path, cmd)
		},
	}

	addTermFlags(cmd, &opts.TermOptions, true)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the matrix as JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	term, err := assembleTerm(context.Background(), &opts.TermOptions, path, opts.logger(cmd))
	if err != nil {
		return outputCommandError(formatter, err)
	}

	formatter.VerboseLog("Compiled %d parameter(s) into %d row(s)", len(term.Parameters), term.Matrix.Len())

	if opts.Output != "" {
		if err := writeMatrixToFile(term.Matrix, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
	}

	return outputCompileSuccess(formatter, term, opts.Output)
}

func newCompilationResult(term *assembler.CompiledTerm) CompilationResult {
	res := CompilationResult{
		Phase:       term.Phase,
		Components:  term.Components,
		Key:         term.Key,
		Cached:      term.Cached,
		Parameters:  make([]string, len(term.Parameters)),
		Synthesized: make([]string, len(term.Synthesized)),
		Matrix:      term.Matrix,
	}
	for i, p := range term.Parameters {
		res.Parameters[i] = p.String()
	}
	for i, p := range term.Synthesized {
		res.Synthesized[i] = p.String()
	}
	return res
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, term *assembler.CompiledTerm, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(newCompilationResult(term))
	}

	w := formatter.Writer
	source := "compiled"
	if term.Cached {
		source = "loaded from cache"
	}
	fmt.Fprintf(w, "✓ %s: %d parameter(s), %d row(s), %d symbolic (%s)\n",
		term.Phase, len(term.Parameters), term.Matrix.Len(), len(term.Matrix.Symbolic), source)
	if len(term.Synthesized) > 0 {
		fmt.Fprintf(w, "  %d implied ternary parameter(s) synthesized\n", len(term.Synthesized))
	}
	fmt.Fprintln(w)

	if err := term.Matrix.WriteText(w); err != nil {
		return err
	}

	if outputFile != "" {
		fmt.Fprintf(w, "\nWrote matrix to %s\n", outputFile)
	}
	return nil
}

// writeMatrixToFile writes the matrix as indented JSON.
func writeMatrixToFile(m *matrix.Matrix, filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling matrix: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
