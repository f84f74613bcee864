package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/ir"
	"github.com/roach88/rkc/internal/store"
)

// CacheOptions holds flags for the cache command.
type CacheOptions struct {
	*RootOptions
	Database string
	Phase    string // optional - filter to one phase
	Purge    bool
}

// CacheResult lists the cached compiled terms of a store.
type CacheResult struct {
	Terms  []store.CompiledInfo `json:"terms"`
	Purged int64                `json:"purged,omitempty"`
}

// NewCacheCommand creates the cache command.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CacheOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List or purge cached compiled terms",
		Long: `List the compiled matrices cached in a SQLite store, in the order they
were written, or delete them all with --purge.

Examples:
  rkc cache --db ./rkc.db
  rkc cache --db ./rkc.db --phase LIQUID --format json
  rkc cache --db ./rkc.db --purge`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Phase, "phase", "", "filter to one phase")
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "delete every cached term")

	return cmd
}

func runCache(opts *CacheOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	result := CacheResult{}
	if opts.Purge {
		n, err := st.PurgeCompiled(ctx)
		if err != nil {
			return outputCommandError(formatter, &commandError{Code: ErrCodeStore, Err: err})
		}
		result.Purged = n
	}

	result.Terms, err = st.CompiledTerms(ctx, ir.Normalize(opts.Phase))
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if opts.Purge {
		fmt.Fprintf(w, "✓ Purged %d cached term(s)\n", result.Purged)
		return nil
	}
	if len(result.Terms) == 0 {
		fmt.Fprintln(w, "No cached terms.")
		return nil
	}

	fmt.Fprintf(w, "%d cached term(s):\n", len(result.Terms))
	for _, t := range result.Terms {
		fmt.Fprintf(w, "  [seq=%d] %s: %d column(s), %d row(s), %d symbolic\n",
			t.Seq, t.Phase, t.Columns, t.Rows, t.Symbolic)
		formatter.VerboseLog("    key %s", t.Key)
	}
	return nil
}
