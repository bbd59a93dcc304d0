package ir

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Pos is a position in a declaration file. Line and Column are 1-based;
// the zero Pos is invalid.
type Pos struct {
	Filename string
	Line     int
	Column   int
}

// IsValid reports whether the position carries real location info.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	if !p.IsValid() {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Visibility is the optional access modifier on a clause. Go's access
// control is identifier case, so the modifier is an assertion the parser
// checks against the declared name rather than something the generator
// interprets.
type Visibility string

const (
	// VisUnexported is the absence of a modifier; the declared name must
	// start with a lower-case letter.
	VisUnexported Visibility = ""

	// VisPub is the `pub` modifier; the declared name must start with an
	// upper-case letter.
	VisPub Visibility = "pub"
)

// Decl is a single parsed `[pub] static NAME: TYPE = INIT;` clause.
// Type and Init are verbatim source text; the parser validates only the
// clause shape, leaving type checking to the Go compiler that builds the
// generated output.
type Decl struct {
	Visibility Visibility
	Name       string
	Type       string
	Init       string
	Pos        Pos
}

// Exported reports whether this declaration carries the `pub` modifier.
func (d Decl) Exported() bool {
	return d.Visibility == VisPub
}

// VisibilityMatchesName reports whether the declared name's case agrees
// with the visibility modifier.
func (d Decl) VisibilityMatchesName() bool {
	r, _ := utf8.DecodeRuneInString(d.Name)
	if r == utf8.RuneError {
		return false
	}
	if d.Exported() {
		return unicode.IsUpper(r)
	}
	return !unicode.IsUpper(r)
}

// File is one parsed declaration file.
type File struct {
	// Path is the source path as given to the parser, used for
	// diagnostics and cache provenance.
	Path string

	// Decls are the clauses in declaration order.
	Decls []Decl
}

// canonicalMap converts a Decl to the map form consumed by
// MarshalCanonical. Pos is excluded: identity covers what is declared,
// not where.
func (d Decl) canonicalMap() map[string]any {
	m := map[string]any{
		"name": d.Name,
		"type": d.Type,
		"init": d.Init,
	}
	if d.Visibility != VisUnexported {
		m["visibility"] = string(d.Visibility)
	}
	return m
}

// CanonicalMap converts the File to the map form consumed by
// MarshalCanonical. Decl order is preserved: reordering clauses changes
// the generated output, so it must change the digest.
func (f *File) CanonicalMap() map[string]any {
	decls := make([]any, len(f.Decls))
	for i, d := range f.Decls {
		decls[i] = d.canonicalMap()
	}
	return map[string]any{
		"path":  f.Path,
		"decls": decls,
	}
}
