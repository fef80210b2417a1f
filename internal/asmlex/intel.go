package asmlex

import "github.com/xyproto/minic/internal/diag"

// Intel tokenizes src as Intel-syntax assembly (spec.md §4.C): bare
// register names, `[base]`/`-offset[base]` memory operands, `QWORD
// PTR` sizing swallowed as a no-op, and `#` line comments. Blanks and
// newlines are scanned but never appear in the returned slice.
func Intel(src string) ([]Token, error) {
	l := newLexer(src, mnemonicKeywords)
	var out []Token
	for {
		t, err := l.scanOneIntel()
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

func (l *lexer) scanOneIntel() (Token, error) {
	if len(l.src) == 0 {
		row, col := l.pos()
		return Token{Kind: EOF, Row: row, Col: col}, nil
	}

	row, col := l.pos()
	c := l.src[0]
	switch {
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
	case c == '[':
		l.advance(1)
		return Token{Kind: LBRACKET, Row: row, Col: col}, nil
	case c == ']':
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
