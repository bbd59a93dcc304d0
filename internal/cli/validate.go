package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Decls  int               `json:"decls"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one declaration-syntax error.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Pos     string `json:"pos,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <decls-dir>",
		Short: "Check declaration files without generating code",
		Long: `Parse every .rtinit file in the directory and report every clause
that does not match the declaration grammar, without writing output.
Faster than generate for editor/CI feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, declsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadDecls(declsDir)

	// Directory-level failures are command errors, not validation results.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputGenerateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputGenerateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d declaration file(s) in %s", len(loadResult.Files), declsDir)

	result := &ValidationResult{
		Valid: len(loadErrors) == 0,
		Files: len(loadResult.Files),
		Decls: loadResult.DeclCount,
	}
	for _, err := range loadErrors {
		issue := ValidationIssue{}
		issue.Code, issue.Message = parseDeclError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			issue.Pos = loadErr.Pos.String()
		}
		result.Errors = append(result.Errors, issue)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
		}
		return nil
	}

	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %d file(s), %d declaration(s) valid\n", result.Files, result.Decls)
		return nil
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, issue := range result.Errors {
		if issue.Pos != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", issue.Pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
