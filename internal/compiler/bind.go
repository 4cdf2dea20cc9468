package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/legends/internal/expr"
	"github.com/roach88/legends/internal/ir"
)

// RandomThing is the reserved name of the dice pseudo-thing. Random->D<n>
// rolls 1..n and Random->Percent rolls 1..100 from the evaluation's Rand.
// A scope parameter or global of the same name hides it.
const RandomThing = "Random"

// binder resolves names and checks kinds, turning an AST into an
// executable program. A binder is used for one source text.
type binder struct {
	source  string
	scope   Scope
	globals ir.Bindings
}

func (b *binder) errorf(code BindErrorCode, pos int, format string, args ...any) *BindError {
	return &BindError{Code: code, Source: b.source, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// expression binds n. allowThing admits a bare thing-valued name, which is
// only legal as a whole formatted-text span.
func (b *binder) expression(n expr.Node, allowThing bool) (node, ir.Kind, error) {
	switch v := n.(type) {
	case *expr.IntLit:
		return constNode{ir.Int(v.Value)}, ir.KindInt, nil
	case *expr.BoolLit:
		return constNode{ir.Bool(v.Value)}, ir.KindBool, nil
	case *expr.StringLit:
		return constNode{ir.String(v.Value)}, ir.KindString, nil
	case *expr.Ident:
		return b.ident(v, allowThing)
	case *expr.Member:
		return b.member(v)
	case *expr.Unary:
		return b.unary(v)
	case *expr.Binary:
		return b.binary(v)
	default:
		return nil, ir.KindInvalid, b.errorf(ErrCodeTypeMismatch, n.Pos(), "unsupported expression %T", n)
	}
}

func (b *binder) ident(v *expr.Ident, allowThing bool) (node, ir.Kind, error) {
	if b.scope.Contains(v.Name) {
		if !allowThing {
			return nil, ir.KindInvalid, b.errorf(ErrCodeThingValue, v.Offset,
				"%s is a thing; use %s->Attribute", v.Name, v.Name)
		}
		return thingNode{name: v.Name, pos: v.Offset}, ir.KindThing, nil
	}
	if g, ok := b.globals.Lookup(v.Name); ok {
		if g.Kind() == ir.KindThing && !allowThing {
			return nil, ir.KindInvalid, b.errorf(ErrCodeThingValue, v.Offset,
				"%s is a thing; use %s->Attribute", v.Name, v.Name)
		}
		return constNode{g}, g.Kind(), nil
	}
	if v.Name == RandomThing {
		return nil, ir.KindInvalid, b.errorf(ErrCodeThingValue, v.Offset,
			"%s can only be rolled, e.g. %s->D6", RandomThing, RandomThing)
	}
	return nil, ir.KindInvalid, b.errorf(ErrCodeUnknownVariable, v.Offset,
		"unknown variable %q (scope: %s)", v.Name, b.describeScope())
}

func (b *binder) member(v *expr.Member) (node, ir.Kind, error) {
	name := v.Target.Name
	if b.scope.Contains(name) {
		return attrNode{name: name, attr: v.Attribute, pos: v.AttrPos}, ir.KindInt, nil
	}
	if g, ok := b.globals.Lookup(name); ok {
		t, isThing := g.(*ir.Thing)
		if !isThing {
			return nil, ir.KindInvalid, b.errorf(ErrCodeNotAThing, v.Target.Offset,
				"%s is a %s, not a thing", name, g.Kind())
		}
		return globalAttrNode{thing: t, attr: v.Attribute, pos: v.AttrPos}, ir.KindInt, nil
	}
	if name == RandomThing {
		sides, err := b.dieSides(v)
		if err != nil {
			return nil, ir.KindInvalid, err
		}
		return dieNode{sides: sides, pos: v.AttrPos}, ir.KindInt, nil
	}
	return nil, ir.KindInvalid, b.errorf(ErrCodeUnknownVariable, v.Target.Offset,
		"unknown variable %q (scope: %s)", name, b.describeScope())
}

func (b *binder) dieSides(v *expr.Member) (int, error) {
	if v.Attribute == "Percent" {
		return 100, nil
	}
	if digits, ok := strings.CutPrefix(v.Attribute, "D"); ok {
		n, err := strconv.Atoi(digits)
		if err == nil && n >= 1 && n <= math.MaxInt32 {
			return n, nil
		}
	}
	return 0, b.errorf(ErrCodeInvalidDie, v.AttrPos,
		"%s->%s is not a die; use D<sides> or Percent", RandomThing, v.Attribute)
}

func (b *binder) unary(v *expr.Unary) (node, ir.Kind, error) {
	operand, kind, err := b.expression(v.Operand, false)
	if err != nil {
		return nil, ir.KindInvalid, err
	}
	switch v.Op {
	case expr.OpNeg:
		if kind != ir.KindInt {
			return nil, ir.KindInvalid, b.errorf(ErrCodeTypeMismatch, v.Offset, "unary - requires int, got %s", kind)
		}
		return unaryNode{op: v.Op, operand: operand, pos: v.Offset}, ir.KindInt, nil
	default:
		if kind != ir.KindBool {
			return nil, ir.KindInvalid, b.errorf(ErrCodeTypeMismatch, v.Offset, "! requires bool, got %s", kind)
		}
		return unaryNode{op: v.Op, operand: operand}, ir.KindBool, nil
	}
}

func (b *binder) binary(v *expr.Binary) (node, ir.Kind, error) {
	left, lk, err := b.expression(v.Left, false)
	if err != nil {
		return nil, ir.KindInvalid, err
	}
	right, rk, err := b.expression(v.Right, false)
	if err != nil {
		return nil, ir.KindInvalid, err
	}

	mismatch := func(want string) error {
		return b.errorf(ErrCodeTypeMismatch, v.Offset,
			"operator %s requires %s operands, got %s and %s", v.Op, want, lk, rk)
	}

	switch {
	case v.Op.IsLogical():
		if lk != ir.KindBool || rk != ir.KindBool {
			return nil, ir.KindInvalid, mismatch("bool")
		}
		return logicalNode{op: v.Op, left: left, right: right}, ir.KindBool, nil
	case v.Op.IsArithmetic():
		if lk != ir.KindInt || rk != ir.KindInt {
			return nil, ir.KindInvalid, mismatch("int")
		}
		return arithNode{op: v.Op, left: left, right: right, pos: v.Offset}, ir.KindInt, nil
	case v.Op.IsOrdering():
		if lk != ir.KindInt || rk != ir.KindInt {
			return nil, ir.KindInvalid, mismatch("int")
		}
		return compareNode{op: v.Op, left: left, right: right}, ir.KindBool, nil
	default:
		if lk != rk {
			return nil, ir.KindInvalid, mismatch("matching")
		}
		return compareNode{op: v.Op, left: left, right: right}, ir.KindBool, nil
	}
}

// simple binds a single-expression condition whose value must be want.
func (b *binder) simple(root expr.Node, want ir.Kind) (program, error) {
	n, kind, err := b.expression(root, false)
	if err != nil {
		return nil, err
	}
	if kind != want {
		return nil, b.errorf(ErrCodeTypeMismatch, root.Pos(), "condition yields %s, expected %s", kind, want)
	}
	return exprProgram{root: n}, nil
}

// complex binds a statement-form condition. Every path must end in exactly
// one return of kind want.
func (b *binder) complex(block *expr.Block, want ir.Kind) (program, error) {
	body, done, err := b.block(block.Stmts, want)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, b.errorf(ErrCodeMissingResult, len(b.source), "condition can finish without a return")
	}
	return stmtProgram{body: body}, nil
}

// block binds stmts and reports whether every path through them returns.
func (b *binder) block(stmts []expr.Stmt, want ir.Kind) ([]stmt, bool, error) {
	var out []stmt
	done := false
	for _, s := range stmts {
		if done {
			return nil, false, b.errorf(ErrCodeAmbiguousResult, s.Pos(), "statement after return is unreachable")
		}
		bound, returns, err := b.statement(s, want)
		if err != nil {
			return nil, false, err
		}
		out = append(out, bound)
		done = returns
	}
	return out, done, nil
}

func (b *binder) statement(s expr.Stmt, want ir.Kind) (stmt, bool, error) {
	switch v := s.(type) {
	case *expr.ExprStmt:
		n, _, err := b.expression(v.X, false)
		if err != nil {
			return nil, false, err
		}
		return exprStmt{x: n}, false, nil
	case *expr.ReturnStmt:
		n, kind, err := b.expression(v.Value, false)
		if err != nil {
			return nil, false, err
		}
		if kind != want {
			return nil, false, b.errorf(ErrCodeTypeMismatch, v.Value.Pos(), "return yields %s, expected %s", kind, want)
		}
		return returnStmt{x: n}, true, nil
	case *expr.IfStmt:
		return b.ifStatement(v, want)
	case *expr.Block:
		body, done, err := b.block(v.Stmts, want)
		if err != nil {
			return nil, false, err
		}
		return blockStmt{body: body}, done, nil
	default:
		return nil, false, b.errorf(ErrCodeTypeMismatch, s.Pos(), "unsupported statement %T", s)
	}
}

func (b *binder) ifStatement(v *expr.IfStmt, want ir.Kind) (stmt, bool, error) {
	cond, kind, err := b.expression(v.Cond, false)
	if err != nil {
		return nil, false, err
	}
	if kind != ir.KindBool {
		return nil, false, b.errorf(ErrCodeTypeMismatch, v.Cond.Pos(), "if condition yields %s, expected bool", kind)
	}
	then, thenDone, err := b.block(v.Then.Stmts, want)
	if err != nil {
		return nil, false, err
	}
	out := ifStmt{cond: cond, then: then}
	if v.Else == nil {
		return out, false, nil
	}
	els, elseDone, err := b.statement(v.Else, want)
	if err != nil {
		return nil, false, err
	}
	out.els = els
	return out, thenDone && elseDone, nil
}

// template binds every embedded span of formatted text. Spans may yield any
// kind; a bare thing renders as its name.
func (b *binder) template(t *expr.Template) (program, error) {
	segs := make([]textSegment, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if seg.Expr == nil {
			segs = append(segs, textSegment{literal: seg.Text})
			continue
		}
		n, _, err := b.expression(seg.Expr, true)
		if err != nil {
			return nil, err
		}
		segs = append(segs, textSegment{expr: n})
	}
	return textProgram{segments: segs}, nil
}

func (b *binder) describeScope() string {
	if b.scope.Len() == 0 {
		return "empty"
	}
	return strings.Join(b.scope.names, ", ")
}
