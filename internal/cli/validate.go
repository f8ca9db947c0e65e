package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/backlash/internal/harness"
)

// ValidationError describes one scenario file that failed validation.
type ValidationError struct {
	File    string `json:"file"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Validate scenario files without running them",
		Long: `Validate conformance scenarios without running them.

Checks strict YAML decoding, required fields, that every dispatch decodes
against the screen's actions, and the embedded CUE schema.

Exit codes:
  0 - All scenarios are valid
  1 - One or more scenarios are invalid

Examples:
  backlash validate scenarios/take_photo.yaml
  backlash validate scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Files: len(paths)}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		if _, err := harness.LoadScenario(path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, validationError(path, err))
		}
	}

	if opts.Format == "json" {
		var failure *CLIError
		if !result.Valid {
			failure = &CLIError{Code: "E_INVALID", Message: fmt.Sprintf("%d invalid scenario(s)", len(result.Errors))}
		}
		if err := formatter.Respond(result, failure); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario(s)", len(result.Errors)))
	}
	return nil
}

// validationError keeps the schema position when it points into the scenario.
func validationError(path string, err error) ValidationError {
	verr := ValidationError{File: path, Message: err.Error()}

	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) && schemaErr.Pos.IsValid() && schemaErr.Pos.Filename() == path {
		verr.Message = schemaErr.Message
		verr.Line = schemaErr.Pos.Line()
		verr.Column = schemaErr.Pos.Column()
	}
	return verr
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	s := f.styles()
	w := f.Writer

	for _, e := range result.Errors {
		loc := e.File
		if e.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
		}
		fmt.Fprintf(w, "%s %s\n  %s\n", s.mark(false), loc, e.Message)
	}

	if result.Valid {
		fmt.Fprintf(w, "%s %d scenario(s) valid\n", s.mark(true), result.Files)
		return
	}
	fmt.Fprintf(w, "%s %d of %d scenario(s) invalid\n", s.mark(false), len(result.Errors), result.Files)
}
