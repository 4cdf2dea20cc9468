// Package expr parses legends condition source text into an immutable
// abstract syntax tree.
//
// Three source forms share one lexer and one expression grammar:
//
//   - Simple conditions: a single expression, e.g. "(Subject->Health + Subject->Fear) / 2".
//   - Complex conditions: a sequence of statements separated by newlines or
//     ';', with if/else blocks and return statements.
//   - Formatted text: literal text with embedded expressions between '{' and
//     '}'; "{{" and "}}" are literal braces.
//
// Operator precedence, lowest to highest:
//
//	||
//	&&
//	<= < >= > == !=
//	+ -
//	* /
//	unary - !
//	primary: literal | identifier | identifier->Attribute | ( expr )
//
// Member dereference (->) is part of the primary term, not a binary
// operator: its left side must be an identifier.
//
// Nodes are never mutated after Parse returns and may be shared freely
// between goroutines.
package expr
