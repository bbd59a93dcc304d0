// Package parser turns declaration files into ir.File values.
//
// The accepted grammar is a sequence of one or more clauses:
//
//	[pub] static NAME: TYPE = INITIALIZER;
//
// TYPE and INITIALIZER are verbatim Go source text; the parser tracks
// string literals, comments, and bracket nesting only far enough to find
// the clause delimiters, and leaves type checking to the Go compiler
// that builds the generated output. Any input that does not match the
// clause shape is rejected with a positioned error.
package parser

import (
	"fmt"
	"strings"

	"github.com/roach88/rtinit/internal/ir"
)

// ParseError is a declaration-syntax error with source position.
type ParseError struct {
	Pos     ir.Pos
	Message string
}

func (e *ParseError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// Parse parses src as a declaration file. All clause errors are
// collected: after a malformed clause the parser resynchronizes at the
// next top-level ';' and continues, so a single run reports every
// offending clause. The returned File holds the clauses that did parse.
func Parse(filename string, src []byte) (*ir.File, []error) {
	p := &parser{s: newScanner(filename, src)}
	file := &ir.File{Path: filename}

	for {
		p.s.skipSpaceAndComments()
		if p.s.eof() {
			break
		}
		decl, err := p.parseClause()
		if err != nil {
			p.errs = append(p.errs, err)
			p.recover()
			continue
		}
		file.Decls = append(file.Decls, decl)
	}

	if len(file.Decls) == 0 && len(p.errs) == 0 {
		p.errs = append(p.errs, &ParseError{
			Pos:     ir.Pos{Filename: filename, Line: 1, Column: 1},
			Message: "at least one static declaration is required",
		})
	}

	return file, p.errs
}

type parser struct {
	s    *scanner
	errs []error
}

// parseClause parses one `[pub] static NAME: TYPE = INIT;` clause.
// The scanner is positioned at the first non-space rune of the clause.
func (p *parser) parseClause() (ir.Decl, error) {
	start := p.s.pos()

	word, ok := p.s.scanIdent()
	if !ok {
		return ir.Decl{}, &ParseError{
			Pos:     start,
			Message: fmt.Sprintf("expected 'static' or a visibility modifier, found %q", p.s.peekToken()),
		}
	}

	decl := ir.Decl{Pos: start}

	if word == string(ir.VisPub) {
		decl.Visibility = ir.VisPub
		p.s.skipSpaceAndComments()
		kwPos := p.s.pos()
		word, ok = p.s.scanIdent()
		if !ok {
			word = p.s.peekToken()
		}
		if word != "static" {
			return ir.Decl{}, &ParseError{
				Pos:     kwPos,
				Message: fmt.Sprintf("expected 'static' after 'pub', found %q", word),
			}
		}
	} else if word != "static" {
		return ir.Decl{}, &ParseError{
			Pos:     start,
			Message: fmt.Sprintf("expected 'static' or a visibility modifier, found %q", word),
		}
	}

	p.s.skipSpaceAndComments()
	namePos := p.s.pos()
	name, ok := p.s.scanIdent()
	if !ok {
		return ir.Decl{}, &ParseError{
			Pos:     namePos,
			Message: "missing declaration name after 'static'",
		}
	}
	decl.Name = name

	// Go's access control is identifier case; the modifier is an
	// assertion that must agree with the name.
	if !decl.VisibilityMatchesName() {
		if decl.Exported() {
			return ir.Decl{}, &ParseError{
				Pos:     namePos,
				Message: fmt.Sprintf("declaration %q is marked pub but its name is not exported", name),
			}
		}
		return ir.Decl{}, &ParseError{
			Pos:     namePos,
			Message: fmt.Sprintf("declaration %q has an exported name but lacks the pub modifier", name),
		}
	}

	p.s.skipSpaceAndComments()
	if !p.s.accept(':') {
		return ir.Decl{}, &ParseError{
			Pos:     p.s.pos(),
			Message: fmt.Sprintf("missing ':' after declaration name %q", name),
		}
	}

	p.s.skipSpaceAndComments()
	typPos := p.s.pos()
	typ, terminated, err := p.s.scanSource('=')
	if err != nil {
		return ir.Decl{}, err
	}
	if !terminated {
		return ir.Decl{}, &ParseError{
			Pos:     typPos,
			Message: fmt.Sprintf("missing '=' in declaration %q", name),
		}
	}
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return ir.Decl{}, &ParseError{
			Pos:     typPos,
			Message: fmt.Sprintf("missing type in declaration %q", name),
		}
	}
	decl.Type = typ

	p.s.skipSpaceAndComments()
	initPos := p.s.pos()
	init, terminated, err := p.s.scanSource(';')
	if err != nil {
		return ir.Decl{}, err
	}
	if !terminated {
		return ir.Decl{}, &ParseError{
			Pos:     initPos,
			Message: fmt.Sprintf("missing ';' after declaration %q", name),
		}
	}
	init = strings.TrimSpace(init)
	if init == "" {
		return ir.Decl{}, &ParseError{
			Pos:     initPos,
			Message: fmt.Sprintf("missing initializer in declaration %q", name),
		}
	}
	decl.Init = init

	return decl, nil
}

// recover skips to just past the next top-level ';' so parsing can
// continue with the following clause.
func (p *parser) recover() {
	// Errors inside scanSource already consumed through the clause;
	// otherwise skip the remainder of the malformed clause.
	_, _, _ = p.s.scanSource(';')
}
