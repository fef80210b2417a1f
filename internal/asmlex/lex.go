package asmlex

import (
	"strconv"
	"strings"

	"github.com/xyproto/minic/internal/diag"
)

// lexer is the scanner state shared by both dialects: a cursor over
// the remaining source, a (row, column) position, and the keyword
// table the active dialect installed.
type lexer struct {
	row, col int
	src      string
	keywords map[string]Kind
}

func newLexer(src string, keywords map[string]Kind) *lexer {
	return &lexer{row: 1, col: 1, src: src, keywords: keywords}
}

func (l *lexer) pos() (int, int) { return l.row, l.col }

func (l *lexer) advance(n int) {
	l.col += n
	l.src = l.src[n:]
}

func takeWhile(s string, f func(byte) bool) string {
	i := 0
	for i < len(s) && f(s[i]) {
		i++
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// scanDirective consumes a leading '.' and everything up to the next
// newline, exactly as the reference lexer's scan_directive does.
func (l *lexer) scanDirective() Token {
	row, col := l.pos()
	l.advance(1) // '.'
	text := takeWhile(l.src, func(b byte) bool { return b != '\n' })
	l.advance(len(text))
	return Token{Kind: DIRECTIVE, Row: row, Col: col, Directive: text}
}

// scanWord consumes a run of identifier characters, trims a trailing
// ',' or ':', and classifies the result as a keyword, a register, or
// a label — in that priority order, matching the reference's
// scan_word.
func (l *lexer) scanWord() Token {
	row, col := l.pos()
	word := takeWhile(l.src, func(b byte) bool { return b != ' ' && b != '\n' && b != '\t' && b != ',' && b != ']' })
	l.advance(len(word))
	trimmed := strings.TrimSuffix(strings.TrimSuffix(word, ","), ":")

	lower := strings.ToLower(trimmed)
	if lower == "qword" || lower == "ptr" {
		return Token{Kind: sizingKeyword, Row: row, Col: col}
	}
	if kind, ok := l.keywords[lower]; ok {
		return Token{Kind: kind, Row: row, Col: col, Text: lower}
	}
	if isRegisterName(lower) {
		return Token{Kind: REG, Row: row, Col: col, Text: lower}
	}
	return Token{Kind: LABEL, Row: row, Col: col, Text: trimmed}
}

// scanNumber consumes a run of ASCII digits.
func (l *lexer) scanNumber() (Token, error) {
	row, col := l.pos()
	digits := takeWhile(l.src, isDigit)
	l.advance(len(digits))
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Token{}, diag.New(diag.Lex, diag.Pos{Row: row, Col: col}, "invalid integer literal %q", digits)
	}
	return Token{Kind: INTEGER, Row: row, Col: col, IntValue: v}, nil
}

// scanDollarImmediate consumes AT&T's '$'-prefixed integer literal;
// the absence of a digit right after '$' is a lex error (spec.md §4.C).
func (l *lexer) scanDollarImmediate() (Token, error) {
	row, col := l.pos()
	l.advance(1) // '$'
	if len(l.src) == 0 || !isDigit(l.src[0]) {
		return Token{}, diag.New(diag.Lex, diag.Pos{Row: row, Col: col}, "expected integer after '$'")
	}
	digits := takeWhile(l.src, isDigit)
	l.advance(len(digits))
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Token{}, diag.New(diag.Lex, diag.Pos{Row: row, Col: col}, "invalid integer literal %q", digits)
	}
	return Token{Kind: INTEGER, Row: row, Col: col, IntValue: v}, nil
}

// scanPercentRegister consumes AT&T's '%'-prefixed register name.
func (l *lexer) scanPercentRegister() Token {
	row, col := l.pos()
	l.advance(1) // '%'
	name := takeWhile(l.src, isAlnum)
	l.advance(len(name))
	return Token{Kind: REG, Row: row, Col: col, Text: strings.ToLower(name)}
}

// skipWhitespace absorbs spaces, tabs, and commas together: spec.md's
// own literal lexing scenario (§8.6) shows a comma between two
// operands producing no token, matching the reference lexer's
// treatment of ',' as an insignificant separator rather than a
// punctuation token in its own right.
func (l *lexer) skipWhitespace() Token {
	n := takeWhile(l.src, func(b byte) bool { return b == ' ' || b == '\t' || b == ',' })
	l.advance(len(n))
	return Token{Kind: blank}
}

func (l *lexer) skipComment() Token {
	text := takeWhile(l.src, func(b byte) bool { return b != '\n' })
	l.advance(len(text))
	return Token{Kind: blank}
}

func (l *lexer) newline() Token {
	l.row++
	l.col = 1
	l.src = l.src[1:]
	return Token{Kind: newline}
}
