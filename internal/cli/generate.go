package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/rtinit/internal/cache"
	"github.com/roach88/rtinit/internal/codegen"
	"github.com/roach88/rtinit/internal/ir"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Package   string // package name for generated files
	Output    string // output directory
	CachePath string // generation cache database path
}

// GeneratedFile describes one source file's generation outcome.
type GeneratedFile struct {
	Source      string `json:"source"`
	Output      string `json:"output"`
	DeclCount   int    `json:"decl_count"`
	InputDigest string `json:"input_digest"`
	Skipped     bool   `json:"skipped,omitempty"` // cache hit, output untouched
}

// GenerationResult holds the outcome of a generate run.
type GenerationResult struct {
	Package string          `json:"package"`
	Files   []GeneratedFile `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <decls-dir>",
		Short: "Generate Go source from static declaration files",
		Long: `Generate Go source from .rtinit declaration files.

Each clause ` + "`[pub] static NAME: TYPE = INIT;`" + ` becomes a package-level
lazy slot binding. Settings come from flags, then .rtinit.yaml in the
declarations directory, then defaults.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "package name for generated files")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory (default: declarations directory)")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "generation cache database path")

	return cmd
}

func runGenerate(opts *GenerateOptions, declsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(declsDir)
	if err != nil {
		return outputGenerateError(formatter, ErrCodeConfig, err.Error())
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = cfg.Package
	}
	if pkg == "" {
		return outputGenerateError(formatter, ErrCodeConfig,
			"no package name: pass --package or set 'package' in "+ConfigFilename)
	}

	outDir := opts.Output
	if outDir == "" {
		outDir = cfg.Output
		if outDir != "" && !filepath.IsAbs(outDir) {
			outDir = filepath.Join(declsDir, outDir)
		}
	}
	if outDir == "" {
		outDir = declsDir
	}

	loadResult, loadErrors := LoadDecls(declsDir)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputGenerateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputGenerateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d declaration file(s) in %s", len(loadResult.Files), declsDir)

	if len(loadErrors) > 0 {
		return outputDeclErrors(formatter, loadErrors, ExitCommandError, "generation")
	}

	var gen *cache.Cache
	if opts.CachePath != "" {
		gen, err = cache.Open(opts.CachePath)
		if err != nil {
			return outputGenerateError(formatter, ErrCodeCacheFailed, err.Error())
		}
		defer gen.Close()
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return outputGenerateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("creating output directory: %v", err))
	}

	ctx := context.Background()
	result := &GenerationResult{Package: pkg}

	for _, file := range loadResult.Files {
		gf, err := generateFile(ctx, file, pkg, outDir, cfg, gen, formatter)
		if err != nil {
			return err
		}
		result.Files = append(result.Files, *gf)
	}

	return outputGenerateSuccess(formatter, result)
}

// generateFile emits one declaration file, honoring the cache.
func generateFile(ctx context.Context, file *ir.File, pkg, outDir string, cfg *Config, gen *cache.Cache, formatter *OutputFormatter) (*GeneratedFile, error) {
	digest, err := ir.FileDigest(file)
	if err != nil {
		return nil, outputGenerateError(formatter, ErrCodeGeneric, fmt.Sprintf("digesting %s: %v", file.Path, err))
	}

	outPath := filepath.Join(outDir, codegen.OutputFilename(file.Path))
	gf := &GeneratedFile{
		Source:      file.Path,
		Output:      outPath,
		DeclCount:   len(file.Decls),
		InputDigest: digest,
	}

	cacheKey := cache.Key(digest, pkg, cfg.LazyImport, cfg.Header)
	if gen != nil {
		hit, err := gen.Lookup(ctx, cacheKey)
		if err != nil {
			return nil, outputGenerateError(formatter, ErrCodeCacheFailed, err.Error())
		}
		if hit != nil && fileExists(outPath) {
			formatter.VerboseLog("%s unchanged since %s, skipping", file.Path, hit.CreatedAt.Format("2006-01-02 15:04:05"))
			gf.Skipped = true
			return gf, nil
		}
	}

	generated, err := codegen.Emit(file, codegen.Options{
		Package:    pkg,
		LazyImport: cfg.LazyImport,
		Header:     cfg.Header,
	})
	if err != nil {
		return nil, outputGenerateError(formatter, ErrCodeEmitFailed, err.Error())
	}

	if err := os.WriteFile(outPath, generated, 0644); err != nil {
		return nil, outputGenerateError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", outPath, err))
	}
	formatter.VerboseLog("Wrote %s (%d declaration(s))", outPath, len(file.Decls))

	if gen != nil {
		if _, err := gen.RecordRun(ctx, file.Path, cacheKey, cache.OutputDigest(generated)); err != nil {
			return nil, outputGenerateError(formatter, ErrCodeCacheFailed, err.Error())
		}
	}

	return gf, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// outputGenerateSuccess outputs a successful generation run.
func outputGenerateSuccess(formatter *OutputFormatter, result *GenerationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	total := 0
	for _, f := range result.Files {
		total += f.DeclCount
	}
	fmt.Fprintf(formatter.Writer, "✓ Generated %d file(s), %d declaration(s)\n\n", len(result.Files), total)

	for _, f := range result.Files {
		suffix := ""
		if f.Skipped {
			suffix = ", unchanged"
		}
		fmt.Fprintf(formatter.Writer, "  %s → %s (%d decl(s)%s)\n", f.Source, f.Output, f.DeclCount, suffix)
	}
	fmt.Fprintln(formatter.Writer)

	return nil
}

// outputGenerateError outputs a single command-level error.
func outputGenerateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputDeclErrors outputs declaration-syntax errors collected by the
// loader, one position line per error, and returns an ExitError with
// the given code.
func outputDeclErrors(formatter *OutputFormatter, errs []error, exitCode int, phase string) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseDeclError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(exitCode, fmt.Sprintf("%s failed with %d error(s)", phase, len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "✗ %s failed\n\n", titleCase(phase))

	for _, err := range errs {
		code, message := parseDeclError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s\n", loadErr.Pos)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(exitCode, fmt.Sprintf("%s failed with %d error(s)", phase, len(errs)))
}

// parseDeclError extracts error code and message from an error.
func parseDeclError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
