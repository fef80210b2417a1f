package asmlex

import "github.com/xyproto/minic/internal/diag"

// attKeywords extends the shared mnemonic table with the AT&T
// suffixed spellings ("addq", "movq", ...) and "cltd" for CQO, all
// resolving to the same Kind values Intel syntax uses.
var attKeywords = buildATTKeywords()

func buildATTKeywords() map[string]Kind {
	m := make(map[string]Kind, len(mnemonicKeywords)*2)
	for name, kind := range mnemonicKeywords {
		m[name] = kind
	}
	for _, name := range []string{"add", "sub", "mov", "imul", "idiv", "cmp"} {
		m[name+"q"] = mnemonicKeywords[name]
	}
	m["cltd"] = CQO
	return m
}

// ATT tokenizes src as AT&T-syntax assembly (spec.md §4.C): `%`-prefixed
// registers, `$`-prefixed immediates, and the same directive/comment/
// punctuation scanners Intel syntax shares.
func ATT(src string) ([]Token, error) {
	l := newLexer(src, attKeywords)
	var out []Token
	for {
		t, err := l.scanOneATT()
		if err != nil {
			return nil, err
		}
		if t.shouldIgnore() {
			continue
		}
		out = append(out, t)
		if t.Kind == EOF {
			break
		}
	}
	return out, nil
}

func (l *lexer) scanOneATT() (Token, error) {
	if len(l.src) == 0 {
		row, col := l.pos()
		return Token{Kind: EOF, Row: row, Col: col}, nil
	}

	row, col := l.pos()
	c := l.src[0]
	switch {
	case c == '%':
		return l.scanPercentRegister(), nil
	case c == '$':
		return l.scanDollarImmediate()
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		return l.scanWord(), nil
	case isDigit(c):
		return l.scanNumber()
	case c == '.':
		return l.scanDirective(), nil
	case c == '#':
		return l.skipComment(), nil
	case c == ' ' || c == '\t' || c == ',':
		return l.skipWhitespace(), nil
	case c == '\n':
		return l.newline(), nil
	case c == '(':
		l.advance(1)
		return Token{Kind: LBRACKET, Row: row, Col: col}, nil
	case c == ')':
		l.advance(1)
		return Token{Kind: RBRACKET, Row: row, Col: col}, nil
	case c == '-':
		l.advance(1)
		return Token{Kind: MINUS, Row: row, Col: col}, nil
	case c == ':':
		l.advance(1)
		return Token{Kind: COLON, Row: row, Col: col}, nil
	default:
		return Token{}, diag.New(diag.Lex, diag.Pos{Row: row, Col: col}, "unexpected character %q", c)
	}
}
