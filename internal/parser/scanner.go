package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/roach88/rtinit/internal/ir"
)

// scanner walks declaration source rune by rune, tracking line/column
// for diagnostics.
type scanner struct {
	file string
	src  []rune
	off  int
	line int
	col  int
}

func newScanner(filename string, src []byte) *scanner {
	return &scanner{
		file: filename,
		src:  []rune(string(src)),
		line: 1,
		col:  1,
	}
}

func (s *scanner) eof() bool {
	return s.off >= len(s.src)
}

func (s *scanner) pos() ir.Pos {
	return ir.Pos{Filename: s.file, Line: s.line, Column: s.col}
}

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.off]
}

func (s *scanner) peekAt(n int) rune {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

// next consumes and returns the current rune, updating line/column.
func (s *scanner) next() rune {
	r := s.src[s.off]
	s.off++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

// accept consumes r if it is the next rune.
func (s *scanner) accept(r rune) bool {
	if s.eof() || s.peek() != r {
		return false
	}
	s.next()
	return true
}

// skipSpaceAndComments advances past whitespace, // line comments, and
// /* */ block comments. An unterminated block comment stops at EOF; the
// parser reports the resulting missing-delimiter error.
func (s *scanner) skipSpaceAndComments() {
	for !s.eof() {
		switch {
		case unicode.IsSpace(s.peek()):
			s.next()
		case s.peek() == '/' && s.peekAt(1) == '/':
			for !s.eof() && s.peek() != '\n' {
				s.next()
			}
		case s.peek() == '/' && s.peekAt(1) == '*':
			s.next()
			s.next()
			for !s.eof() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.next()
					s.next()
					break
				}
				s.next()
			}
		default:
			return
		}
	}
}

// scanIdent scans a Go identifier. Returns ("", false) if the next rune
// cannot start one.
func (s *scanner) scanIdent() (string, bool) {
	if s.eof() {
		return "", false
	}
	r := s.peek()
	if r != '_' && !unicode.IsLetter(r) {
		return "", false
	}
	var b strings.Builder
	for !s.eof() {
		r := s.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		b.WriteRune(s.next())
	}
	return b.String(), true
}

// peekToken returns a short description of the upcoming input for error
// messages: the next identifier-ish run, or the single next rune.
func (s *scanner) peekToken() string {
	if s.eof() {
		return "end of file"
	}
	r := s.peek()
	if r == '_' || unicode.IsLetter(r) {
		end := s.off
		for end < len(s.src) {
			r := s.src[end]
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			end++
		}
		return string(s.src[s.off:end])
	}
	return string(r)
}

// scanSource collects verbatim Go source text until stop appears at
// bracket depth zero outside any literal or comment. The stop rune is
// consumed but not included. Returns terminated=false if EOF was reached
// before stop. String, rune, and raw literals and both comment forms are
// opaque: delimiters inside them never terminate the scan. Unterminated
// literals are reported as errors at the literal's opening position.
func (s *scanner) scanSource(stop rune) (string, bool, error) {
	var b strings.Builder
	depth := 0

	for !s.eof() {
		r := s.peek()

		if depth <= 0 && r == stop {
			s.next()
			return b.String(), true, nil
		}

		switch r {
		case '(', '[', '{':
			depth++
			b.WriteRune(s.next())
		case ')', ']', '}':
			depth--
			b.WriteRune(s.next())
		case '"', '\'':
			if err := s.scanLiteral(&b, r); err != nil {
				return b.String(), false, err
			}
		case '`':
			start := s.pos()
			b.WriteRune(s.next())
			for {
				if s.eof() {
					return b.String(), false, &ParseError{Pos: start, Message: "unterminated raw string literal"}
				}
				c := s.next()
				b.WriteRune(c)
				if c == '`' {
					break
				}
			}
		case '/':
			switch s.peekAt(1) {
			case '/':
				for !s.eof() && s.peek() != '\n' {
					b.WriteRune(s.next())
				}
			case '*':
				start := s.pos()
				b.WriteRune(s.next())
				b.WriteRune(s.next())
				for {
					if s.eof() {
						return b.String(), false, &ParseError{Pos: start, Message: "unterminated block comment"}
					}
					if s.peek() == '*' && s.peekAt(1) == '/' {
						b.WriteRune(s.next())
						b.WriteRune(s.next())
						break
					}
					b.WriteRune(s.next())
				}
			default:
				b.WriteRune(s.next())
			}
		default:
			b.WriteRune(s.next())
		}
	}

	return b.String(), false, nil
}

// scanLiteral consumes an interpreted string or rune literal, honoring
// backslash escapes.
func (s *scanner) scanLiteral(b *strings.Builder, quote rune) error {
	start := s.pos()
	b.WriteRune(s.next())
	for {
		if s.eof() {
			return &ParseError{Pos: start, Message: fmt.Sprintf("unterminated %s literal", literalName(quote))}
		}
		c := s.next()
		b.WriteRune(c)
		switch c {
		case '\\':
			if s.eof() {
				return &ParseError{Pos: start, Message: fmt.Sprintf("unterminated %s literal", literalName(quote))}
			}
			b.WriteRune(s.next())
		case quote:
			return nil
		case '\n':
			// Interpreted literals cannot span lines.
			return &ParseError{Pos: start, Message: fmt.Sprintf("unterminated %s literal", literalName(quote))}
		}
	}
}

func literalName(quote rune) string {
	if quote == '\'' {
		return "rune"
	}
	return "string"
}
