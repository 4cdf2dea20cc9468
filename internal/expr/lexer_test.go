package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(src string) []Token {
	l := NewLexer(src)
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return out
		}
	}
}

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return types
}

func TestLexer_Operators(t *testing.T) {
	toks := lexAll("a->b <= < >= > == != && || ! + - * / ( ) { } ;")
	assert.Equal(t, []TokenType{
		TokenIdent, TokenArrow, TokenIdent,
		TokenLE, TokenLT, TokenGE, TokenGT, TokenEq, TokenNE,
		TokenAnd, TokenOr, TokenNot,
		TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenSemicolon,
		TokenEOF,
	}, tokenTypes(toks))
}

func TestLexer_KeywordsAndLiterals(t *testing.T) {
	toks := lexAll(`if true else false return 42 "hi" Health_2`)
	require.Len(t, toks, 9)
	assert.Equal(t, TokenIf, toks[0].Type)
	assert.Equal(t, TokenTrue, toks[1].Type)
	assert.Equal(t, TokenElse, toks[2].Type)
	assert.Equal(t, TokenFalse, toks[3].Type)
	assert.Equal(t, TokenReturn, toks[4].Type)
	assert.Equal(t, Token{Type: TokenInt, Value: "42", Pos: 26, End: 28}, toks[5])
	assert.Equal(t, TokenString, toks[6].Type)
	assert.Equal(t, "hi", toks[6].Value)
	assert.Equal(t, Token{Type: TokenIdent, Value: "Health_2", Pos: 34, End: 42}, toks[7])
}

func TestLexer_Newlines(t *testing.T) {
	toks := lexAll("a\r\n\tb")
	assert.Equal(t, []TokenType{TokenIdent, TokenNewline, TokenIdent, TokenEOF}, tokenTypes(toks))
}

func TestLexer_StringEscape(t *testing.T) {
	toks := lexAll(`"say \"hi\" \n"`)
	require.Equal(t, TokenString, toks[0].Type)
	assert.Equal(t, `say "hi" \n`, toks[0].Value)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		reason string
	}{
		{"unterminated string", `"abc`, "unterminated string"},
		{"string across newline", "\"abc\ndef\"", "unterminated string"},
		{"single ampersand", "a & b", "incomplete operator &"},
		{"single pipe", "a | b", "incomplete operator |"},
		{"single equals", "a = b", "incomplete operator ="},
		{"unknown character", "a # b", "unexpected character '#'"},
		{"control byte", "a \x01", "unexpected character (byte 0x01)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(tt.src)
			last := toks[len(toks)-1]
			assert.Equal(t, TokenError, last.Type)
			assert.Equal(t, tt.reason, last.Value)
		})
	}
}

func TestLexer_EOFIsSticky(t *testing.T) {
	l := NewLexer("x")
	l.Next()
	assert.Equal(t, TokenEOF, l.Next().Type)
	assert.Equal(t, TokenEOF, l.Next().Type)
}
