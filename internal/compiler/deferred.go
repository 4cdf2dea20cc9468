package compiler

import (
	"sync"
	"sync/atomic"

	"github.com/roach88/legends/internal/ir"
)

// DeferredState is the realization state of a Deferred.
type DeferredState int32

const (
	Unrealized DeferredState = iota
	Realized
	Failed
)

func (s DeferredState) String() string {
	switch s {
	case Unrealized:
		return "unrealized"
	case Realized:
		return "realized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Deferred is a compile request that runs at most once, on the first
// Realize. Later calls return the same unit or the same error.
type Deferred struct {
	build func() (*Unit, error)
	once  sync.Once
	state atomic.Int32
	unit  *Unit
	err   error
}

// Defer wraps build. Nothing is compiled until Realize.
func Defer(build func() (*Unit, error)) *Deferred {
	return &Deferred{build: build}
}

// DeferCompile defers c.Compile with the given arguments.
func DeferCompile(c *Compiler, mode Mode, source string, scope Scope, result ir.Kind) *Deferred {
	return Defer(func() (*Unit, error) {
		return c.Compile(mode, source, scope, result)
	})
}

// Realize compiles on first call and returns the memoized outcome.
func (d *Deferred) Realize() (*Unit, error) {
	d.once.Do(func() {
		d.unit, d.err = d.build()
		if d.err != nil {
			d.state.Store(int32(Failed))
		} else {
			d.state.Store(int32(Realized))
		}
		d.build = nil
	})
	return d.unit, d.err
}

// State reports whether Realize has run and how it ended.
func (d *Deferred) State() DeferredState {
	return DeferredState(d.state.Load())
}

// Unit returns the realized unit, or nil before a successful Realize.
func (d *Deferred) Unit() *Unit {
	if d.State() != Realized {
		return nil
	}
	return d.unit
}
