package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/compiler"
	"github.com/roach88/rkc/internal/database"
	"github.com/roach88/rkc/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Phases     int                        `json:"phases"`
	Parameters int                        `json:"parameters"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <database>",
		Short: "Check a parameter database for problems",
		Long: `Load a parameter database and report every problem found: CUE syntax,
malformed records and expressions, undefined phases, constituents that are
not on their sublattice, duplicate records and values that do not compile.

Exit codes:
  0 - Database valid
  1 - Validation failed
  2 - Command error (path not found, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	db, validationErrors, err := validateDatabase(path)
	if err != nil {
		return outputCommandError(formatter, err)
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	formatter.VerboseLog("Validated %d phase(s), %d parameter(s) in %s", len(db.Phases), len(db.Parameters), path)
	return outputValidateSuccess(formatter, db)
}

// validateDatabase loads path collecting every problem. Record-level load
// errors and structural problems come back as validation errors; a
// returned error means nothing could be loaded.
func validateDatabase(path string) (*ir.Database, []compiler.ValidationError, error) {
	loadResult, loadErrors := database.LoadPath(path, database.LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, nil, loadErrors[0]
	}

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		validationErrors = append(validationErrors, loadErrorToValidation(err))
	}
	if loadResult == nil || loadResult.Database == nil {
		return &ir.Database{}, validationErrors, nil
	}

	validationErrors = append(validationErrors, compiler.Validate(loadResult.Database)...)
	return loadResult.Database, validationErrors, nil
}

func loadErrorToValidation(err error) compiler.ValidationError {
	var loadErr *database.LoadError
	if errors.As(err, &loadErr) {
		ve := compiler.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
		}
		if loadErr.Pos.IsValid() {
			ve.Field = loadErr.Pos.Filename()
			ve.Line = loadErr.Pos.Line()
		}
		return ve
	}
	return compiler.ValidationError{Field: "load", Message: err.Error(), Code: database.ErrCodeGeneric}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, db *ir.Database) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:      true,
			Phases:     len(db.Phases),
			Parameters: len(db.Parameters),
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Database valid: %d phase(s), %d parameter(s)\n", len(db.Phases), len(db.Parameters))
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s line %d\n", err.Field, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.Field)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
