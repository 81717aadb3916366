// Package parser turns eTPL source text into a Raw-state
// ir.Collection. It is a concrete, swappable front end: nothing in
// internal/ir, internal/normalize, internal/depsort, internal/check or
// internal/width imports it, so a different surface syntax could
// replace it without touching the pipeline that actually enforces the
// language's invariants.
package parser

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokPunct
	tokString
)

type token struct {
	kind tokenKind
	text string
	ival int64
	line int
}

// lexer is a hand-rolled scanner over eTPL source, named-production
// style: each recognize* helper corresponds to one lexical category of
// the grammar, matching how the original parser's grammar.txt names
// every production it can fail on.
type lexer struct {
	src   string
	pos   int
	line  int
	toks  []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1}
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, token{kind: tokEOF, line: l.line})
			return l.toks, nil
		}

		c := l.src[l.pos]
		switch {
		case isIdentStart(c):
			l.recognizeIdent()
		case isDigit(c):
			if err := l.recognizeInt(); err != nil {
				return nil, err
			}
		case c == '"':
			if err := l.recognizeString(); err != nil {
				return nil, err
			}
		default:
			l.recognizePunct()
		}
	}
}

func (l *lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.pos += 2
			for l.pos+1 < len(l.src) && !(l.src[l.pos] == '*' && l.src[l.pos+1] == '/') {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				l.pos++
			}
			l.pos += 2
		default:
			return
		}
	}
}

func (l *lexer) recognizeIdent() {
	start := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	l.toks = append(l.toks, token{kind: tokIdent, text: l.src[start:l.pos], line: l.line})
}

// recognizeInt handles all three integer literal forms the grammar
// lists: hex (0x.../0X...), binary (0b.../0B...) and plain decimal.
func (l *lexer) recognizeInt() error {
	start := l.pos
	line := l.line

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		l.pos += 2
		digitsStart := l.pos
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		if l.pos == digitsStart {
			return fmt.Errorf("line %d: expected hex digits after %q", line, l.src[start:l.pos])
		}
		v, err := strconv.ParseInt(l.src[digitsStart:l.pos], 16, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid hex integer literal %q", line, l.src[start:l.pos])
		}
		l.toks = append(l.toks, token{kind: tokInt, text: l.src[start:l.pos], ival: v, line: line})
		return nil
	}

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'b' || l.src[l.pos+1] == 'B') {
		l.pos += 2
		digitsStart := l.pos
		for l.pos < len(l.src) && (l.src[l.pos] == '0' || l.src[l.pos] == '1') {
			l.pos++
		}
		if l.pos == digitsStart {
			return fmt.Errorf("line %d: expected binary digits after %q", line, l.src[start:l.pos])
		}
		v, err := strconv.ParseInt(l.src[digitsStart:l.pos], 2, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid binary integer literal %q", line, l.src[start:l.pos])
		}
		l.toks = append(l.toks, token{kind: tokInt, text: l.src[start:l.pos], ival: v, line: line})
		return nil
	}

	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid integer literal %q", line, text)
	}
	l.toks = append(l.toks, token{kind: tokInt, text: text, ival: v, line: line})
	return nil
}

func (l *lexer) recognizeString() error {
	line := l.line
	l.pos++ // opening quote
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\n' {
			return fmt.Errorf("line %d: unterminated string literal", line)
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		return fmt.Errorf("line %d: unterminated string literal", line)
	}
	text := l.src[start:l.pos]
	l.pos++ // closing quote
	l.toks = append(l.toks, token{kind: tokString, text: text, line: line})
	return nil
}

// multiCharPuncts are the two-character operators the grammar needs
// glued together so the parser never has to look past whitespace to
// tell "::" from two colons or "[[" from two brackets: the type
// parametrization marker, the item-based vector/dynamic-vector
// brackets, and the int-range dots.
var multiCharPuncts = []string{"::", "[[", "]]", "<<", ">>", ".."}

func (l *lexer) recognizePunct() {
	for _, p := range multiCharPuncts {
		if l.pos+len(p) <= len(l.src) && l.src[l.pos:l.pos+len(p)] == p {
			l.toks = append(l.toks, token{kind: tokPunct, text: p, line: l.line})
			l.pos += len(p)
			return
		}
	}
	l.toks = append(l.toks, token{kind: tokPunct, text: string(l.src[l.pos]), line: l.line})
	l.pos++
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
