package expr

// Lexer converts condition source text into a sequence of tokens.
// Newlines are significant only to the complex statement form; the parser
// skips them inside expressions.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. At end of input it returns TokenEOF on every
// call. A malformed token yields TokenError with Value holding the reason.
func (l *Lexer) Next() Token {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos, End: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	if ch == '\n' {
		l.pos++
		return Token{Type: TokenNewline, Pos: start, End: l.pos}
	}

	if l.pos+1 < len(l.input) {
		if tt, ok := symbols2[l.input[l.pos:l.pos+2]]; ok {
			l.pos += 2
			return Token{Type: tt, Value: l.input[start:l.pos], Pos: start, End: l.pos}
		}
	}

	if tt, ok := symbols1[ch]; ok {
		l.pos++
		return Token{Type: tt, Value: l.input[start:l.pos], Pos: start, End: l.pos}
	}

	switch {
	case ch == '"':
		return l.scanString()
	case isDigit(ch):
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenInt, Value: l.input[start:l.pos], Pos: start, End: l.pos}
	case isIdentStart(ch):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		word := l.input[start:l.pos]
		if kw, ok := keywords[word]; ok {
			return Token{Type: kw, Value: word, Pos: start, End: l.pos}
		}
		return Token{Type: TokenIdent, Value: word, Pos: start, End: l.pos}
	}

	l.pos++
	if ch == '&' || ch == '|' || ch == '=' {
		return Token{Type: TokenError, Value: "incomplete operator " + string(ch), Pos: start, End: l.pos}
	}
	return Token{Type: TokenError, Value: "unexpected character " + quoteByte(ch), Pos: start, End: l.pos}
}

// scanString reads a double-quoted string. The only escape is \" for a
// literal quote; every other backslash is kept verbatim.
func (l *Lexer) scanString() Token {
	start := l.pos
	l.pos++ // opening quote

	var buf []byte
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '"':
			buf = append(buf, '"')
			l.pos += 2
		case ch == '"':
			l.pos++
			return Token{Type: TokenString, Value: string(buf), Pos: start, End: l.pos}
		case ch == '\n':
			return Token{Type: TokenError, Value: "unterminated string", Pos: start, End: l.pos}
		default:
			buf = append(buf, ch)
			l.pos++
		}
	}
	return Token{Type: TokenError, Value: "unterminated string", Pos: start, End: l.pos}
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func quoteByte(ch byte) string {
	if ch < 0x20 || ch >= 0x7f {
		return "(byte 0x" + hex2(ch) + ")"
	}
	return "'" + string(ch) + "'"
}

func hex2(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0x0f]})
}
