package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/loom/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool            `json:"valid"`
	Documents int             `json:"documents"`
	Errors    []DocumentError `json:"errors,omitempty"`
}

// DocumentError is a validation error tagged with its source file.
type DocumentError struct {
	File string `json:"file"`
	compiler.ValidationError
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document|dir>...",
		Short: "Check harness documents without writing outputs",
		Long: `Check harness documents without writing any output files.

Reports every invalid declaration and malformed connection record it can
find, then resolves the connections up to the first failing record.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	paths, err := ResolveInputs(args)
	if err != nil {
		return reportError(formatter, err)
	}

	formatter.VerboseLog("Validating %d document(s)", len(paths))
	all := ValidateFiles(paths)
	if len(all) > 0 {
		return outputValidationErrors(formatter, len(paths), all)
	}
	return outputValidateSuccess(formatter, len(paths))
}

// validateFile loads and validates one document. Load failures become a
// single validation error.
func validateFile(path string) []compiler.ValidationError {
	doc, err := LoadDocument(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return []compiler.ValidationError{{
				Field:   "document",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    lineOf(loadErr.Pos),
			}}
		}
		return []compiler.ValidationError{{Field: "document", Message: err.Error(), Code: ErrCodeGeneric}}
	}
	return compiler.Validate(doc)
}

func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// ValidateFiles validates documents without producing CLI output.
func ValidateFiles(paths []string) []DocumentError {
	var all []DocumentError
	for _, path := range paths {
		for _, e := range validateFile(path) {
			all = append(all, DocumentError{File: path, ValidationError: e})
		}
	}
	return all
}

func outputValidateSuccess(formatter *OutputFormatter, documents int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Documents: documents})
	}

	fmt.Fprintf(formatter.Writer, "✓ All documents valid (%d)\n", documents)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, documents int, errs []DocumentError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:     false,
				Documents: documents,
				Errors:    errs,
			},
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
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return failure
}
