package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/legends/internal/compiler"
	"github.com/roach88/legends/internal/loader"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Files  int     `json:"files"`
	Errors []Issue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <pack-dir>...",
		Short: "Validate packs without compiling expressions",
		Long: `Validate definition packs without compiling their expressions.

Reads every pack file, checks field names and types, definition names,
object keys, effect targets and default results, then attaches the
catalog. Expression source is not parsed; use compile for that.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dirs []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr())

	pack, errs := loader.LoadAll(dirs, loader.LoadModeCollectAll)
	if pack == nil {
		issue := loadIssue(errs[0])
		_ = formatter.Error(issue.Code, issue.Message, nil)
		// File errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, issue.String())
	}
	formatter.VerboseLog("Found %d pack file(s) in %v", len(pack.Files), dirs)

	issues := make([]Issue, 0, len(errs))
	for _, err := range errs {
		issues = append(issues, loadIssue(err))
	}
	if len(issues) == 0 {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		c := compiler.New(compiler.WithLogger(logger))
		if err := pack.Catalog.Attach(ctx, c); err != nil {
			for _, d := range loader.Diagnose(err, pack.Sources) {
				issues = append(issues, diagnosticIssue(d))
			}
		}
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, len(pack.Files), issues)
	}
	return outputValidateSuccess(formatter, len(pack.Files))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, files int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Files: files})
	}

	fmt.Fprintf(formatter.Writer, "\u2713 All packs valid (%d file(s))\n", files)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, files int, issues []Issue) error {
	msg := fmt.Sprintf("validation failed with %d error(s)", len(issues))

	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Files: files, Errors: issues},
			Error:  &CLIError{Code: issues[0].Code, Message: issues[0].Message},
		}); err != nil {
			return err
		}
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range issues {
		fmt.Fprintf(formatter.Writer, "  %s\n", issue)
	}
	fmt.Fprintln(formatter.Writer)

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, msg)
}
