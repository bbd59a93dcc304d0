// Package codegen emits Go source for parsed declaration files.
//
// Each clause `[pub] static NAME: TYPE = INIT;` becomes a package-level
// binding `var NAME = lazy.New(func() TYPE { return INIT })`. The
// bindings are independent slots: accessing one never initializes
// another, and each producer runs exactly once on first NAME.Get().
package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/roach88/rtinit/internal/ir"
)

// DefaultLazyImport is the import path of the runtime slot package.
const DefaultLazyImport = "github.com/roach88/rtinit/lazy"

// Options configures code emission.
type Options struct {
	// Package is the package name for the generated file. Required.
	Package string

	// LazyImport overrides the slot package import path. Useful when the
	// lazy package is vendored or forked. Defaults to DefaultLazyImport.
	LazyImport string

	// Header is an optional extra comment placed below the generated-code
	// marker, e.g. a provenance note. Written verbatim as line comments.
	Header string
}

// Emit renders f as a formatted Go source file.
//
// The output always begins with a "Code generated" marker so tooling
// (and reviewers) skip it, and is passed through go/format so generated
// diffs stay stable regardless of clause layout in the source file.
func Emit(f *ir.File, opts Options) ([]byte, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("codegen: package name is required")
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("codegen: invalid package name %q", opts.Package)
	}
	if len(f.Decls) == 0 {
		return nil, fmt.Errorf("codegen: %s has no declarations", f.Path)
	}

	lazyImport := opts.LazyImport
	if lazyImport == "" {
		lazyImport = DefaultLazyImport
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "// Code generated by rtinit from %s. DO NOT EDIT.\n", filepath.Base(f.Path))
	if opts.Header != "" {
		b.WriteString("//\n")
		for _, line := range strings.Split(strings.TrimRight(opts.Header, "\n"), "\n") {
			fmt.Fprintf(&b, "// %s\n", line)
		}
	}
	fmt.Fprintf(&b, "\npackage %s\n\n", opts.Package)
	fmt.Fprintf(&b, "import %q\n\n", lazyImport)

	for _, d := range f.Decls {
		fmt.Fprintf(&b, "var %s = lazy.New(func() %s {\n\treturn %s\n})\n\n", d.Name, d.Type, d.Init)
	}

	src, err := format.Source(b.Bytes())
	if err != nil {
		// A format failure means a clause carried text that is not a
		// valid Go type or expression; point at the file so the user
		// looks there rather than at the generator.
		return nil, fmt.Errorf("codegen: %s produced unformattable Go source: %w", f.Path, err)
	}
	return src, nil
}

// OutputFilename maps a declaration file path to its generated Go file
// name: decls/app.rtinit -> app_rtinit.go.
func OutputFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "_rtinit.go"
}
