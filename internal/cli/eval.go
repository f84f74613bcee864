package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	TermOptions
	T       float64
	P       float64
	Y       map[string]string
	Symbols map[string]string
	Strict  bool
}

// EvalResult is the JSON form of one evaluation.
type EvalResult struct {
	T     float64            `json:"T"`
	P     float64            `json:"P"`
	Y     map[string]float64 `json:"y"`
	Value float64            `json:"value"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval [database]",
		Short: "Evaluate a compiled mixing term",
		Long: `Compile a mixing term and evaluate it at one temperature, pressure
and composition.

Composition keys are a sublattice:component pair (0:AL) or a bare
component (AL). A temperature outside every interval contributes zero
unless --strict is set.

Examples:
  rkc eval ./alni.cue --phase LIQUID --components AL,NI --type L --T 1000 --y AL=0.3,NI=0.7
  rkc eval ./db --phase LIQUID --components A,B --T 1000 --y A=0.3,B=0.7 --symbol VV0001=1000`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runEval(opts, path, cmd)
		},
	}

	addTermFlags(cmd, &opts.TermOptions, true)
	cmd.Flags().Float64Var(&opts.T, "T", 298.15, "temperature in K")
	cmd.Flags().Float64Var(&opts.P, "P", 101325, "pressure in Pa")
	cmd.Flags().StringToStringVar(&opts.Y, "y", nil, "site fractions, e.g. AL=0.3,NI=0.7 (required)")
	_ = cmd.MarkFlagRequired("y")
	cmd.Flags().StringToStringVar(&opts.Symbols, "symbol", nil, "values for symbolic rows, e.g. VV0001=1000")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when no interval covers T")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	values, err := parseFloatMap("y", opts.Y)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	symbols, err := parseFloatMap("symbol", opts.Symbols)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	term, err := assembleTerm(context.Background(), &opts.TermOptions, path, opts.logger(cmd))
	if err != nil {
		return outputCommandError(formatter, err)
	}

	y, err := term.Composition(values)
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeUsage, Err: err})
	}

	var value float64
	switch {
	case len(symbols) > 0:
		value, err = term.EvalWith(opts.P, opts.T, y, symbols)
	case opts.Strict:
		value, err = term.EvalStrict(opts.P, opts.T, y)
	default:
		value = term.Eval(opts.P, opts.T, y)
	}
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeEval, Err: err})
	}

	if formatter.Format == "json" {
		return formatter.Success(EvalResult{T: opts.T, P: opts.P, Y: values, Value: value})
	}
	fmt.Fprintf(formatter.Writer, "%s(T=%v, P=%v) = %s\n", term.Phase, opts.T, opts.P, strconv.FormatFloat(value, 'g', -1, 64))
	if opts.Verbose {
		names := term.DOF.Names()
		for i, name := range names {
			fmt.Fprintf(formatter.Writer, "  %s = %v\n", name, y[i])
		}
	}
	return nil
}

// parseFloatMap parses KEY=VALUE flag pairs, normalising the keys.
func parseFloatMap(flag string, raw map[string]string) (map[string]float64, error) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]float64, len(raw))
	for _, k := range keys {
		v, err := strconv.ParseFloat(raw[k], 64)
		if err != nil {
			return nil, &commandError{Code: ErrCodeUsage, Err: fmt.Errorf("--%s %s: %w", flag, k, err)}
		}
		out[ir.Normalize(k)] = v
	}
	return out, nil
}
