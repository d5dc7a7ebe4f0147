// Package query lexes, parses, and executes the statement mini-language:
// CREATE DATABASE, USE, ADD TABLE, INSERT INTO, REMOVE FROM and UPDATE,
// with ';'-separated batches. Parsing is hand-written recursive descent;
// value literals stay raw strings until the executor types them against
// the column they target.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse marks any statement the parser cannot make sense of.
var ErrParse = errors.New("parse error")

// lexer is a cursor over a single statement. Keywords are matched
// case-sensitively; whitespace between tokens is flexible.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
}

func (l *lexer) done() bool {
	l.skipSpace()
	return l.pos >= len(l.input)
}

// keyword consumes the literal word if it is next, with a word boundary
// after it.
func (l *lexer) keyword(word string) bool {
	l.skipSpace()
	end := l.pos + len(word)
	if end > len(l.input) || l.input[l.pos:end] != word {
		return false
	}
	if end < len(l.input) && isIdentChar(l.input[end]) {
		return false
	}
	l.pos = end
	return true
}

func (l *lexer) expectKeyword(word string) error {
	if !l.keyword(word) {
		return fmt.Errorf("%w: expected %q at %q", ErrParse, word, l.rest())
	}
	return nil
}

// ident consumes an identifier: [A-Za-z_][A-Za-z0-9_]*.
func (l *lexer) ident() (string, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.input) || !isIdentStart(l.input[l.pos]) {
		return "", fmt.Errorf("%w: expected identifier at %q", ErrParse, l.rest())
	}
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos], nil
}

// symbol consumes a single punctuation byte.
func (l *lexer) symbol(b byte) bool {
	l.skipSpace()
	if l.pos < len(l.input) && l.input[l.pos] == b {
		l.pos++
		return true
	}
	return false
}

func (l *lexer) expectSymbol(b byte) error {
	if !l.symbol(b) {
		return fmt.Errorf("%w: expected %q at %q", ErrParse, string(b), l.rest())
	}
	return nil
}

// valueUntil consumes a raw value token: everything up to (not including)
// the first of the stop bytes, trimmed of surrounding whitespace. Values
// are not quoted, so they cannot contain a stop byte.
func (l *lexer) valueUntil(stops string) (string, error) {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.input) && !strings.ContainsRune(stops, rune(l.input[l.pos])) {
		l.pos++
	}
	val := strings.TrimRight(l.input[start:l.pos], " \t")
	if val == "" {
		return "", fmt.Errorf("%w: expected value at %q", ErrParse, l.rest())
	}
	return val, nil
}

// restValue consumes everything remaining as a single raw value token.
func (l *lexer) restValue() (string, error) {
	l.skipSpace()
	val := strings.TrimRight(l.input[l.pos:], " \t")
	l.pos = len(l.input)
	if val == "" {
		return "", fmt.Errorf("%w: expected value at end of statement", ErrParse)
	}
	return val, nil
}

func (l *lexer) rest() string {
	return l.input[l.pos:]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
