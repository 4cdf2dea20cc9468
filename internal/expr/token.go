package expr

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenIdent
	TokenInt
	TokenString
	TokenNewline
	TokenSemicolon

	TokenArrow  // ->
	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenLE     // <=
	TokenLT     // <
	TokenGE     // >=
	TokenGT     // >
	TokenEq     // ==
	TokenNE     // !=
	TokenAnd    // &&
	TokenOr     // ||
	TokenNot    // !
	TokenLParen // (
	TokenRParen // )
	TokenLBrace // {
	TokenRBrace // }

	TokenTrue
	TokenFalse
	TokenIf
	TokenElse
	TokenReturn
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "end of input",
	TokenError:     "error",
	TokenIdent:     "identifier",
	TokenInt:       "integer",
	TokenString:    "string",
	TokenNewline:   "newline",
	TokenSemicolon: "';'",
	TokenArrow:     "'->'",
	TokenPlus:      "'+'",
	TokenMinus:     "'-'",
	TokenStar:      "'*'",
	TokenSlash:     "'/'",
	TokenLE:        "'<='",
	TokenLT:        "'<'",
	TokenGE:        "'>='",
	TokenGT:        "'>'",
	TokenEq:        "'=='",
	TokenNE:        "'!='",
	TokenAnd:       "'&&'",
	TokenOr:        "'||'",
	TokenNot:       "'!'",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenTrue:      "'true'",
	TokenFalse:     "'false'",
	TokenIf:        "'if'",
	TokenElse:      "'else'",
	TokenReturn:    "'return'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var keywords = map[string]TokenType{
	"true":   TokenTrue,
	"false":  TokenFalse,
	"if":     TokenIf,
	"else":   TokenElse,
	"return": TokenReturn,
}

// Token is a lexical unit with its byte offset in the source.
type Token struct {
	Type  TokenType
	Value string // identifier name, digits, unquoted string contents or error reason
	Pos   int
	End   int
}

// symbols2 lists the two-character operators, checked before single characters.
var symbols2 = map[string]TokenType{
	"->": TokenArrow,
	"<=": TokenLE,
	">=": TokenGE,
	"==": TokenEq,
	"!=": TokenNE,
	"&&": TokenAnd,
	"||": TokenOr,
}

var symbols1 = map[byte]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'<': TokenLT,
	'>': TokenGT,
	'!': TokenNot,
	'(': TokenLParen,
	')': TokenRParen,
	'{': TokenLBrace,
	'}': TokenRBrace,
	';': TokenSemicolon,
}
