package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/legends/internal/expr"
	"github.com/roach88/legends/internal/ir"
)

// Rand is the random source consumed by dice rolls. It is passed to every
// evaluation and never stored in a unit.
type Rand interface {
	// Roll returns a uniformly distributed integer in [1, sides].
	Roll(sides int) int
}

// frame is the per-call evaluation state.
type frame struct {
	rng      Rand
	bindings ir.Bindings
}

type node interface {
	eval(f *frame) (ir.Value, error)
}

type constNode struct{ v ir.Value }

func (n constNode) eval(*frame) (ir.Value, error) { return n.v, nil }

// thingNode is a bare scope parameter in a formatted-text span.
type thingNode struct {
	name string
	pos  int
}

func (n thingNode) eval(f *frame) (ir.Value, error) {
	return f.bindings[n.name], nil
}

// attrNode reads Name->Attr from a bound thing.
type attrNode struct {
	name string
	attr string
	pos  int
}

func (n attrNode) eval(f *frame) (ir.Value, error) {
	t := f.bindings[n.name].(*ir.Thing)
	v, ok := t.Attribute(n.attr)
	if !ok {
		return nil, &RuntimeError{
			Code:      ErrCodeUnknownAttribute,
			Message:   fmt.Sprintf("%s (%s) has no attribute %q", n.name, t.Name, n.attr),
			Variable:  n.name,
			Attribute: n.attr,
			Pos:       n.pos,
		}
	}
	return ir.Int(v), nil
}

type globalAttrNode struct {
	thing *ir.Thing
	attr  string
	pos   int
}

func (n globalAttrNode) eval(*frame) (ir.Value, error) {
	v, ok := n.thing.Attribute(n.attr)
	if !ok {
		return nil, &RuntimeError{
			Code:      ErrCodeUnknownAttribute,
			Message:   fmt.Sprintf("global %s has no attribute %q", n.thing.Name, n.attr),
			Variable:  n.thing.Name,
			Attribute: n.attr,
			Pos:       n.pos,
		}
	}
	return ir.Int(v), nil
}

type dieNode struct {
	sides int
	pos   int
}

func (n dieNode) eval(f *frame) (ir.Value, error) {
	if f.rng == nil {
		return nil, &RuntimeError{
			Code:    ErrCodeMissingRNG,
			Message: fmt.Sprintf("rolling a d%d requires a random source", n.sides),
			Pos:     n.pos,
		}
	}
	return ir.Int(f.rng.Roll(n.sides)), nil
}

type unaryNode struct {
	op      expr.Op
	operand node
	pos     int
}

func (n unaryNode) eval(f *frame) (ir.Value, error) {
	v, err := n.operand.eval(f)
	if err != nil {
		return nil, err
	}
	if n.op == expr.OpNeg {
		a := v.(ir.Int)
		if a == math.MinInt64 {
			return nil, overflow(n.pos, "-(%d)", a)
		}
		return -a, nil
	}
	return !v.(ir.Bool), nil
}

// logicalNode short-circuits && and ||.
type logicalNode struct {
	op          expr.Op
	left, right node
}

func (n logicalNode) eval(f *frame) (ir.Value, error) {
	l, err := n.left.eval(f)
	if err != nil {
		return nil, err
	}
	lb := l.(ir.Bool)
	if (n.op == expr.OpAnd && !bool(lb)) || (n.op == expr.OpOr && bool(lb)) {
		return lb, nil
	}
	return n.right.eval(f)
}

type arithNode struct {
	op          expr.Op
	left, right node
	pos         int
}

func (n arithNode) eval(f *frame) (ir.Value, error) {
	l, r, err := evalPair(f, n.left, n.right)
	if err != nil {
		return nil, err
	}
	a, b := l.(ir.Int), r.(ir.Int)
	switch n.op {
	case expr.OpAdd:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return nil, overflow(n.pos, "%d + %d", a, b)
		}
		return a + b, nil
	case expr.OpSub:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return nil, overflow(n.pos, "%d - %d", a, b)
		}
		return a - b, nil
	case expr.OpMul:
		if a != 0 && b != 0 {
			c := a * b
			if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return nil, overflow(n.pos, "%d * %d", a, b)
			}
			return c, nil
		}
		return ir.Int(0), nil
	default:
		if b == 0 {
			return nil, &RuntimeError{Code: ErrCodeDivisionByZero, Message: fmt.Sprintf("%d / 0", a), Pos: n.pos}
		}
		if a == math.MinInt64 && b == -1 {
			return nil, overflow(n.pos, "%d / %d", a, b)
		}
		// Go division truncates toward zero.
		return a / b, nil
	}
}

func overflow(pos int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: ErrCodeOverflow, Message: fmt.Sprintf(format, args...) + " overflows int64", Pos: pos}
}

type compareNode struct {
	op          expr.Op
	left, right node
}

func (n compareNode) eval(f *frame) (ir.Value, error) {
	l, r, err := evalPair(f, n.left, n.right)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case expr.OpEq:
		return ir.Bool(l == r), nil
	case expr.OpNE:
		return ir.Bool(l != r), nil
	}
	a, b := l.(ir.Int), r.(ir.Int)
	switch n.op {
	case expr.OpLT:
		return ir.Bool(a < b), nil
	case expr.OpLE:
		return ir.Bool(a <= b), nil
	case expr.OpGT:
		return ir.Bool(a > b), nil
	default:
		return ir.Bool(a >= b), nil
	}
}

// evalPair evaluates left before right so dice rolls happen in source order.
func evalPair(f *frame, left, right node) (ir.Value, ir.Value, error) {
	l, err := left.eval(f)
	if err != nil {
		return nil, nil, err
	}
	r, err := right.eval(f)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

type stmt interface {
	// exec runs the statement; done reports that a return was reached.
	exec(f *frame) (result ir.Value, done bool, err error)
}

type exprStmt struct{ x node }

func (s exprStmt) exec(f *frame) (ir.Value, bool, error) {
	_, err := s.x.eval(f)
	return nil, false, err
}

type returnStmt struct{ x node }

func (s returnStmt) exec(f *frame) (ir.Value, bool, error) {
	v, err := s.x.eval(f)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

type ifStmt struct {
	cond node
	then []stmt
	els  stmt // nil, blockStmt, or ifStmt
}

func (s ifStmt) exec(f *frame) (ir.Value, bool, error) {
	c, err := s.cond.eval(f)
	if err != nil {
		return nil, false, err
	}
	if c.(ir.Bool) {
		return execBlock(f, s.then)
	}
	if s.els == nil {
		return nil, false, nil
	}
	return s.els.exec(f)
}

type blockStmt struct{ body []stmt }

func (s blockStmt) exec(f *frame) (ir.Value, bool, error) {
	return execBlock(f, s.body)
}

func execBlock(f *frame, body []stmt) (ir.Value, bool, error) {
	for _, s := range body {
		v, done, err := s.exec(f)
		if err != nil || done {
			return v, done, err
		}
	}
	return nil, false, nil
}

// program is the executable form of one compiled source text.
type program interface {
	run(f *frame) (ir.Value, error)
}

type exprProgram struct{ root node }

func (p exprProgram) run(f *frame) (ir.Value, error) { return p.root.eval(f) }

type stmtProgram struct{ body []stmt }

func (p stmtProgram) run(f *frame) (ir.Value, error) {
	v, done, err := execBlock(f, p.body)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, &RuntimeError{Code: ErrCodeNoResult, Message: "complex condition finished without a return"}
	}
	return v, nil
}

type textSegment struct {
	literal string
	expr    node
}

type textProgram struct{ segments []textSegment }

func (p textProgram) run(f *frame) (ir.Value, error) {
	var sb strings.Builder
	for _, seg := range p.segments {
		if seg.expr == nil {
			sb.WriteString(seg.literal)
			continue
		}
		v, err := seg.expr.eval(f)
		if err != nil {
			return nil, err
		}
		sb.WriteString(ir.Format(v))
	}
	return ir.String(sb.String()), nil
}
