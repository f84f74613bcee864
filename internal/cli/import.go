package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult reports what an import added.
type ImportResult struct {
	Phases     int   `json:"phases"`
	Parameters int   `json:"parameters"`
	Duplicates int   `json:"duplicates"`
	Seq        int64 `json:"seq"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <database>",
		Short: "Import a parameter database into a SQLite store",
		Long: `Validate a CUE parameter database and write its phases and parameters
into a SQLite store. Parameters are content-addressed, so importing the
same database twice adds nothing the second time.

The store can then serve compile and eval without the CUE files.

Examples:
  rkc import ./alni.cue --db ./rkc.db
  rkc import ./db --db ./rkc.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	db, validationErrors, err := validateDatabase(path)
	if err != nil {
		return outputCommandError(formatter, err)
	}
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	stats, err := st.ImportDatabase(ctx, db)
	if err != nil {
		return outputCommandError(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}

	opts.logger(cmd).Debug("database imported",
		"path", path,
		"store", opts.Database,
		"parameters", stats.Parameters,
		"duplicates", stats.Duplicates,
	)

	result := ImportResult{
		Phases:     stats.Phases,
		Parameters: stats.Parameters,
		Duplicates: stats.Duplicates,
		Seq:        st.Seq(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Imported %d phase(s), %d new parameter(s) into %s\n",
		result.Phases, result.Parameters, opts.Database)
	if result.Duplicates > 0 {
		fmt.Fprintf(formatter.Writer, "  %d parameter(s) already stored\n", result.Duplicates)
	}
	return nil
}
