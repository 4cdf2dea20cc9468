package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser builds an AST from a token stream. Create one per parse; a Parser
// is not safe for concurrent use.
type Parser struct {
	src        string // full source, used for error fragments
	tokens     []Token
	pos        int
	statements bool // complex form: newlines terminate statements
	parens     int
}

func newParser(src string, base, end int, statements bool) (*Parser, *ParseError) {
	p := &Parser{src: src, statements: statements}
	lex := NewLexer(src[base:end])
	for {
		tok := lex.Next()
		tok.Pos += base
		tok.End += base
		if tok.Type == TokenError {
			return nil, newParseError(src, tok, tok.Value)
		}
		p.tokens = append(p.tokens, tok)
		if tok.Type == TokenEOF {
			return p, nil
		}
	}
}

// ParseSimple parses a single expression. Newlines are whitespace.
func ParseSimple(src string) (Node, error) {
	p, perr := newParser(src, 0, len(src), false)
	if perr != nil {
		return nil, perr
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s after expression", tok.Type)
	}
	return n, nil
}

// ParseComplex parses the statement form. Whether every path yields exactly
// one result is checked by the binder, not here.
func ParseComplex(src string) (*Block, error) {
	p, perr := newParser(src, 0, len(src), true)
	if perr != nil {
		return nil, perr
	}
	stmts, err := p.parseStatements(TokenEOF)
	if err != nil {
		return nil, err
	}
	return &Block{Stmts: stmts, Offset: 0}, nil
}

// ParseTemplate splits formatted text into literal and expression segments
// and parses each embedded expression.
func ParseTemplate(src string) (*Template, error) {
	tmpl := &Template{}
	var lit strings.Builder
	litStart := 0

	flush := func(next int) {
		if lit.Len() > 0 {
			tmpl.Segments = append(tmpl.Segments, Segment{Text: lit.String(), Offset: litStart})
			lit.Reset()
		}
		litStart = next
	}

	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case ch == '{' && i+1 < len(src) && src[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case ch == '}' && i+1 < len(src) && src[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case ch == '}':
			return nil, &ParseError{Source: src, Pos: i, Fragment: "}", Reason: "unmatched '}' in formatted text"}
		case ch == '{':
			end, perr := scanSpan(src, i)
			if perr != nil {
				return nil, perr
			}
			flush(end + 1)
			if strings.TrimSpace(src[i+1:end]) == "" {
				return nil, &ParseError{Source: src, Pos: i, Fragment: src[i : end+1], Reason: "empty expression in formatted text"}
			}
			n, err := parseSpan(src, i+1, end)
			if err != nil {
				return nil, err
			}
			tmpl.Segments = append(tmpl.Segments, Segment{Expr: n, Offset: i})
			i = end + 1
		default:
			lit.WriteByte(ch)
			i++
		}
	}
	flush(len(src))
	return tmpl, nil
}

// scanSpan returns the index of the '}' closing the span opened at open.
// Braces inside string literals do not count.
func scanSpan(src string, open int) (int, *ParseError) {
	inString := false
	for i := open + 1; i < len(src); i++ {
		ch := src[i]
		if inString {
			switch {
			case ch == '\\' && i+1 < len(src) && src[i+1] == '"':
				i++
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			return 0, &ParseError{Source: src, Pos: i, Fragment: "{", Reason: "nested '{' in formatted text"}
		case '}':
			return i, nil
		}
	}
	return 0, &ParseError{Source: src, Pos: open, Fragment: src[open:], Reason: "unterminated '{' in formatted text"}
}

func parseSpan(src string, start, end int) (Node, error) {
	p, perr := newParser(src, start, end, false)
	if perr != nil {
		return nil, perr
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s in embedded expression", tok.Type)
	}
	return n, nil
}

// peek returns the next significant token without consuming it.
func (p *Parser) peek() Token {
	if p.skipsNewlines() {
		p.skipNewlines()
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) skipsNewlines() bool {
	return !p.statements || p.parens > 0
}

func (p *Parser) skipNewlines() {
	for p.tokens[p.pos].Type == TokenNewline {
		p.pos++
	}
}

func (p *Parser) expect(tt TokenType, context string) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s %s, found %s", tt, context, tok.Type)
	}
	return tok, nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) *ParseError {
	return newParseError(p.src, tok, fmt.Sprintf(format, args...))
}

// parseStatements reads statements until the terminator token (EOF or '}').
func (p *Parser) parseStatements(terminator TokenType) ([]Stmt, error) {
	var stmts []Stmt
	for {
		p.skipTerminators()
		tok := p.peek()
		if tok.Type == terminator {
			return stmts, nil
		}
		if tok.Type == TokenEOF {
			return nil, p.errorf(tok, "unterminated block, expected %s", terminator)
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)

		after := p.peek()
		switch after.Type {
		case TokenNewline, TokenSemicolon, TokenEOF, terminator:
		default:
			return nil, p.errorf(after, "expected newline or ';' after statement, found %s", after.Type)
		}
	}
}

func (p *Parser) skipTerminators() {
	for {
		tt := p.tokens[p.pos].Type
		if tt != TokenNewline && tt != TokenSemicolon {
			return
		}
		p.pos++
	}
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenReturn:
		p.next()
		if nt := p.peek(); nt.Type == TokenNewline || nt.Type == TokenSemicolon || nt.Type == TokenEOF || nt.Type == TokenRBrace {
			return nil, p.errorf(nt, "return requires a value")
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: val, Offset: tok.Pos}, nil
	case TokenIf:
		return p.parseIf()
	case TokenElse:
		return nil, p.errorf(tok, "else without matching if")
	case TokenLBrace:
		p.next()
		stmts, err := p.parseStatements(TokenRBrace)
		if err != nil {
			return nil, err
		}
		p.next()
		return &Block{Stmts: stmts, Offset: tok.Pos}, nil
	default:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x}, nil
	}
}

func (p *Parser) parseIf() (*IfStmt, error) {
	ifTok := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("after if condition")
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Offset: ifTok.Pos}

	// else may follow on the same line as the closing brace or the next one.
	save := p.pos
	p.skipNewlines()
	if p.tokens[p.pos].Type != TokenElse {
		p.pos = save
		return stmt, nil
	}
	p.next()
	if p.peek().Type == TokenIf {
		elseIf, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseIf
		return stmt, nil
	}
	elseBlock, err := p.parseBlock("after else")
	if err != nil {
		return nil, err
	}
	stmt.Else = elseBlock
	return stmt, nil
}

func (p *Parser) parseBlock(context string) (*Block, error) {
	p.skipNewlines()
	open, err := p.expect(TokenLBrace, context)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements(TokenRBrace)
	if err != nil {
		return nil, err
	}
	p.next()
	return &Block{Stmts: stmts, Offset: open.Pos}, nil
}

// binaryLevels lists binary operators from lowest to highest precedence.
var binaryLevels = [][]TokenType{
	{TokenOr},
	{TokenAnd},
	{TokenLE, TokenLT, TokenGE, TokenGT, TokenEq, TokenNE},
	{TokenPlus, TokenMinus},
	{TokenStar, TokenSlash},
}

var tokenOps = map[TokenType]Op{
	TokenOr: OpOr, TokenAnd: OpAnd,
	TokenLE: OpLE, TokenLT: OpLT, TokenGE: OpGE, TokenGT: OpGT, TokenEq: OpEq, TokenNE: OpNE,
	TokenPlus: OpAdd, TokenMinus: OpSub, TokenStar: OpMul, TokenSlash: OpDiv,
}

func (p *Parser) parseExpr() (Node, error) {
	return p.parseLevel(0)
}

// parseLevel parses a left-associative chain of operators at the given
// precedence level.
func (p *Parser) parseLevel(level int) (Node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if !containsToken(binaryLevels[level], tok.Type) {
			return left, nil
		}
		p.next()
		// A trailing operator continues the expression on the next line.
		p.skipNewlines()
		right, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: tokenOps[tok.Type], Left: left, Right: right, Offset: tok.Pos}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenMinus:
		p.next()
		// -digits is an integer literal, which also admits math.MinInt64.
		if lit := p.peek(); lit.Type == TokenInt && lit.Pos == tok.End {
			p.next()
			return p.intLiteral(lit, "-"+lit.Value, tok.Pos)
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNeg, Operand: operand, Offset: tok.Pos}, nil
	case TokenNot:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: OpNot, Operand: operand, Offset: tok.Pos}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenInt:
		return p.intLiteral(tok, tok.Value, tok.Pos)
	case TokenTrue:
		return &BoolLit{Value: true, Offset: tok.Pos}, nil
	case TokenFalse:
		return &BoolLit{Value: false, Offset: tok.Pos}, nil
	case TokenString:
		return &StringLit{Value: tok.Value, Offset: tok.Pos}, nil
	case TokenIdent:
		ident := &Ident{Name: tok.Value, Offset: tok.Pos}
		if p.peek().Type != TokenArrow {
			return ident, nil
		}
		p.next()
		attr, err := p.expect(TokenIdent, "attribute name after '->'")
		if err != nil {
			return nil, err
		}
		return &Member{Target: ident, Attribute: attr.Value, AttrPos: attr.Pos}, nil
	case TokenLParen:
		p.parens++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closeTok := p.peek()
		if closeTok.Type != TokenRParen {
			return nil, p.errorf(closeTok, "unbalanced parentheses: expected ')', found %s", closeTok.Type)
		}
		p.parens--
		p.next()
		return inner, nil
	case TokenRParen:
		return nil, p.errorf(tok, "unbalanced parentheses: unexpected ')'")
	case TokenArrow:
		return nil, p.errorf(tok, "'->' must follow a variable name")
	case TokenEOF:
		return nil, p.errorf(tok, "unexpected end of input, expected an expression")
	default:
		return nil, p.errorf(tok, "unexpected %s, expected an expression", tok.Type)
	}
}

func (p *Parser) intLiteral(tok Token, digits string, offset int) (Node, error) {
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "integer literal %s out of range", digits)
	}
	return &IntLit{Value: v, Offset: offset}, nil
}

func containsToken(set []TokenType, tt TokenType) bool {
	for _, t := range set {
		if t == tt {
			return true
		}
	}
	return false
}
