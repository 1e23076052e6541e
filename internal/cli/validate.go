package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vonderborch/Velentr.Input-sub001/internal/binding"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                      `json:"valid"`
	Conditions int                       `json:"conditions,omitempty"`
	Errors     []binding.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <bindings-file>",
		Short: "Validate a bindings file",
		Long: `Validate a bindings file (.cue, .yaml, .yml or .toml).

Checks the file against the bindings schema and rules, then constructs
every condition against a device hub, reporting all rule violations at
once.

Exit codes:
  0 - Bindings are valid
  1 - Rule violations found
  2 - File could not be read or parsed`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject conditions on unconfigured device families")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	strict := opts.Strict || opts.Config.StrictDevices
	loaded, verrs, err := LoadBindings(path, strict)
	if err != nil {
		code, msg := loadErrorCode(err)
		return outputValidateError(formatter, code, msg, nil)
	}

	if len(verrs) > 0 {
		return outputValidationErrors(formatter, verrs)
	}

	formatter.VerboseLog("Validated %d condition(s) in %s", len(loaded.Named), path)
	for _, n := range loaded.Named {
		formatter.VerboseLog("  %s (%s)", n.Name, n.Spec.Kind)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Conditions: len(loaded.Named)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Bindings valid (%d conditions)\n", len(loaded.Named))
	return nil
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Unreadable bindings are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []binding.ValidationError) error {
	if formatter.Format == "json" {
		if err := formatter.Response(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", e.Code, e.Field, e.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
