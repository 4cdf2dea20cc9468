package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/legends/internal/ir"
)

// Mode selects how source text is parsed.
type Mode string

const (
	ModeSimple  Mode = "simple"  // one expression
	ModeComplex Mode = "complex" // statements with if/else and return
	ModeText    Mode = "text"    // formatted text with {expression} spans
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSimple, ModeComplex, ModeText:
		return m, nil
	}
	return "", fmt.Errorf("unknown compile mode %q", s)
}

// Unit is a compiled, immutable, ready-to-evaluate condition. Units are
// shared through the compiler cache and are safe for concurrent Evaluate.
type Unit struct {
	key    string
	mode   Mode
	source string
	scope  Scope
	result ir.Kind
	prog   program
}

// Key is the content address of the unit: mode, source, scope and result kind.
func (u *Unit) Key() string { return u.key }

func (u *Unit) Mode() Mode { return u.mode }

func (u *Unit) Source() string { return u.source }

func (u *Unit) Scope() Scope { return u.scope }

func (u *Unit) Result() ir.Kind { return u.result }

// Evaluate runs the unit. bindings must hold a thing for every scope
// parameter; extra entries are ignored. rng may be nil when the source rolls
// no dice.
func (u *Unit) Evaluate(rng Rand, bindings ir.Bindings) (ir.Value, error) {
	for _, name := range u.scope.names {
		v, ok := bindings.Lookup(name)
		if !ok {
			return nil, &RuntimeError{
				Code:     ErrCodeUnboundVariable,
				Message:  fmt.Sprintf("no binding for %q", name),
				Variable: name,
			}
		}
		if v.Kind() != ir.KindThing {
			return nil, &RuntimeError{
				Code:     ErrCodeWrongKind,
				Message:  fmt.Sprintf("%q is bound to a %s, expected a thing", name, v.Kind()),
				Variable: name,
			}
		}
	}
	return u.prog.run(&frame{rng: rng, bindings: bindings})
}

// Result is the set of Go types a typed condition can produce.
type Result interface {
	int64 | bool | string
}

// Condition is a Unit with its result converted to a Go type.
type Condition[T Result] struct {
	unit *Unit
}

// NewCondition wraps u, checking its result kind matches T.
func NewCondition[T Result](u *Unit) (Condition[T], error) {
	if want := KindOf[T](); u.result != want {
		return Condition[T]{}, fmt.Errorf("unit yields %s, not %s", u.result, want)
	}
	return Condition[T]{unit: u}, nil
}

// Unit returns the underlying compiled unit.
func (c Condition[T]) Unit() *Unit { return c.unit }

// Evaluate runs the condition and returns its typed result.
func (c Condition[T]) Evaluate(rng Rand, bindings ir.Bindings) (T, error) {
	var zero T
	if c.unit == nil {
		return zero, errors.New("evaluate of an uncompiled condition")
	}
	v, err := c.unit.Evaluate(rng, bindings)
	if err != nil {
		return zero, err
	}
	var native any
	switch val := v.(type) {
	case ir.Int:
		native = int64(val)
	case ir.Bool:
		native = bool(val)
	case ir.String:
		native = string(val)
	}
	t, ok := native.(T)
	if !ok {
		return zero, fmt.Errorf("condition yielded %s, not %T", v.Kind(), zero)
	}
	return t, nil
}

// KindOf maps a Result type to its value kind.
func KindOf[T Result]() ir.Kind {
	var zero T
	switch any(zero).(type) {
	case int64:
		return ir.KindInt
	case bool:
		return ir.KindBool
	default:
		return ir.KindString
	}
}
