package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/rtinit/internal/cache"
	"github.com/roach88/rtinit/internal/ir"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Canonical bool   // dump the raw canonical manifest JSON
	History   bool   // list recorded generation runs instead of parsing
	CachePath string // generation cache database path
}

// InspectedDecl is one declaration with its content-addressed identity.
type InspectedDecl struct {
	Name       string `json:"name"`
	Visibility string `json:"visibility,omitempty"`
	Type       string `json:"type"`
	Init       string `json:"init"`
	Pos        string `json:"pos"`
	ID         string `json:"id"`
}

// InspectResult is the parsed manifest of one declaration file.
type InspectResult struct {
	Path   string          `json:"path"`
	Digest string          `json:"digest"`
	Decls  []InspectedDecl `json:"decls"`
}

// RunRecord is one recorded generation of a declaration file.
type RunRecord struct {
	ID           string `json:"id"`
	InputDigest  string `json:"input_digest"`
	OutputDigest string `json:"output_digest"`
	CreatedAt    string `json:"created_at"`
}

// HistoryResult lists a file's recorded generation runs, newest first.
type HistoryResult struct {
	Path string      `json:"path"`
	Runs []RunRecord `json:"runs"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the parsed manifest of a declaration file",
		Long: `Parse a single .rtinit file and print each clause with its
content-addressed ID, plus the file digest the generation cache keys on.
With --canonical, the raw canonical manifest JSON is printed instead -
the exact bytes the digest is computed over.

With --history, the file is not parsed; instead the generation cache
given by --cache is queried for every recorded run of the file, newest
first. The path must match the one generate was given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print the canonical manifest JSON")
	cmd.Flags().BoolVar(&opts.History, "history", false, "list recorded generation runs for the file")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "generation cache database path (required with --history)")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if opts.History {
		return runInspectHistory(opts, path, formatter)
	}

	file, errs := LoadDeclFile(path)
	if file == nil && len(errs) > 0 {
		code, message := parseDeclError(errs[0])
		return outputGenerateError(formatter, code, message)
	}
	if len(errs) > 0 {
		return outputDeclErrors(formatter, errs, ExitFailure, "inspection")
	}

	if opts.Canonical {
		canonical, err := ir.MarshalCanonical(file.CanonicalMap())
		if err != nil {
			return outputGenerateError(formatter, ErrCodeGeneric, fmt.Sprintf("marshaling manifest: %v", err))
		}
		fmt.Fprintf(formatter.Writer, "%s\n", canonical)
		return nil
	}

	digest, err := ir.FileDigest(file)
	if err != nil {
		return outputGenerateError(formatter, ErrCodeGeneric, fmt.Sprintf("digesting %s: %v", path, err))
	}

	result := &InspectResult{Path: file.Path, Digest: digest}
	for _, d := range file.Decls {
		id, err := ir.DeclID(d)
		if err != nil {
			return outputGenerateError(formatter, ErrCodeGeneric, fmt.Sprintf("computing ID for %q: %v", d.Name, err))
		}
		result.Decls = append(result.Decls, InspectedDecl{
			Name:       d.Name,
			Visibility: string(d.Visibility),
			Type:       d.Type,
			Init:       d.Init,
			Pos:        d.Pos.String(),
			ID:         id,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s: %d declaration(s)\n", result.Path, len(result.Decls))
	fmt.Fprintf(formatter.Writer, "digest: %s\n\n", result.Digest)
	for _, d := range result.Decls {
		vis := ""
		if d.Visibility != "" {
			vis = d.Visibility + " "
		}
		fmt.Fprintf(formatter.Writer, "  %sstatic %s: %s = %s\n", vis, d.Name, d.Type, d.Init)
		fmt.Fprintf(formatter.Writer, "    id: %s\n    at: %s\n", d.ID, d.Pos)
	}

	return nil
}

// runInspectHistory lists the recorded generation runs for path.
func runInspectHistory(opts *InspectOptions, path string, formatter *OutputFormatter) error {
	if opts.CachePath == "" {
		return outputGenerateError(formatter, ErrCodeConfig, "--history requires --cache <db>")
	}

	gen, err := cache.Open(opts.CachePath)
	if err != nil {
		return outputGenerateError(formatter, ErrCodeCacheFailed, err.Error())
	}
	defer gen.Close()

	runs, err := gen.History(context.Background(), path)
	if err != nil {
		return outputGenerateError(formatter, ErrCodeCacheFailed, err.Error())
	}

	result := &HistoryResult{Path: path}
	for _, run := range runs {
		result.Runs = append(result.Runs, RunRecord{
			ID:           run.ID,
			InputDigest:  run.InputDigest,
			OutputDigest: run.OutputDigest,
			CreatedAt:    run.CreatedAt.Format(time.RFC3339),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Runs) == 0 {
		fmt.Fprintf(formatter.Writer, "no recorded runs for %s\n", path)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "%s: %d recorded run(s)\n\n", path, len(result.Runs))
	for _, r := range result.Runs {
		fmt.Fprintf(formatter.Writer, "  %s  %s\n", r.CreatedAt, r.ID)
		fmt.Fprintf(formatter.Writer, "    input:  %s\n    output: %s\n", r.InputDigest, r.OutputDigest)
	}

	return nil
}
