package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/legends/internal/expr"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/observe"
)

// Compiler parses and binds condition source text into Units and memoizes
// them by content. One Compiler is shared by every definition tree attached
// to it; all methods are safe for concurrent use.
type Compiler struct {
	cache   *unitCache
	flight  singleflight.Group
	globals ir.Bindings
	logger  *slog.Logger
	metrics *observe.Metrics

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCacheSize bounds the number of cached units. Non-positive sizes use
// the default.
func WithCacheSize(n int) Option {
	return func(c *Compiler) {
		c.cache = newUnitCache(n)
	}
}

// WithLogger sets the logger for cache and compile records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithMetrics records cache and compile instruments to m.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Compiler) {
		c.metrics = m
	}
}

// WithGlobals declares constants visible to every expression. A scope
// parameter of the same name hides a global. Globals are inlined when a
// unit is bound, so they must not change for the compiler's lifetime.
func WithGlobals(globals ir.Bindings) Option {
	return func(c *Compiler) {
		c.globals = make(ir.Bindings, len(globals))
		for k, v := range globals {
			c.globals[k] = v
		}
	}
}

// New creates a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		cache:   newUnitCache(defaultCacheSize),
		logger:  slog.Default(),
		metrics: observe.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the compiler's logger so attached definitions log alongside it.
func (c *Compiler) Logger() *slog.Logger { return c.logger }

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// Stats returns a snapshot of cache counters.
func (c *Compiler) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: c.cache.len()}
}

// Reset drops every cached unit. Units already handed out stay valid.
func (c *Compiler) Reset() {
	c.cache.clear()
}

// Compile returns the unit for (mode, source, scope, result), parsing and
// binding it on first request. Concurrent requests for the same key share
// one parse+bind; failures are not cached.
func (c *Compiler) Compile(mode Mode, source string, scope Scope, result ir.Kind) (*Unit, error) {
	if err := checkResult(mode, result); err != nil {
		return nil, err
	}
	source = norm.NFC.String(source)
	key := ir.UnitKey(string(mode), source, scope.names, result)
	ctx := context.Background()

	if u, ok := c.cache.get(key); ok {
		c.recordHit(ctx, mode, key)
		return u, nil
	}

	type outcome struct {
		unit *Unit
		hit  bool
	}
	leader := false
	v, err, shared := c.flight.Do(key, func() (any, error) {
		leader = true
		// Another flight may have filled the entry between get and Do.
		if u, ok := c.cache.get(key); ok {
			return outcome{unit: u, hit: true}, nil
		}
		start := time.Now()
		u, err := c.build(mode, source, scope, result, key)
		if err != nil {
			c.metrics.RecordCompileError(ctx, string(mode), errorKind(err))
			return nil, err
		}
		c.cache.set(key, u)
		c.misses.Add(1)
		c.metrics.RecordCacheMiss(ctx, string(mode), time.Since(start))
		c.logger.Debug("compiled unit", "mode", mode, "key", key[:12], "params", scope.Len())
		return outcome{unit: u}, nil
	})
	if err != nil {
		return nil, err
	}
	out := v.(outcome)
	if out.hit || (shared && !leader) {
		c.recordHit(ctx, mode, key)
	}
	return out.unit, nil
}

func (c *Compiler) recordHit(ctx context.Context, mode Mode, key string) {
	c.hits.Add(1)
	c.metrics.RecordCacheHit(ctx, string(mode))
	c.logger.Debug("unit cache hit", "mode", mode, "key", key[:12])
}

func (c *Compiler) build(mode Mode, source string, scope Scope, result ir.Kind, key string) (*Unit, error) {
	b := &binder{source: source, scope: scope, globals: c.globals}
	var (
		prog program
		err  error
	)
	switch mode {
	case ModeSimple:
		var root expr.Node
		if root, err = expr.ParseSimple(source); err == nil {
			prog, err = b.simple(root, result)
		}
	case ModeComplex:
		var block *expr.Block
		if block, err = expr.ParseComplex(source); err == nil {
			prog, err = b.complex(block, result)
		}
	case ModeText:
		var tmpl *expr.Template
		if tmpl, err = expr.ParseTemplate(source); err == nil {
			prog, err = b.template(tmpl)
		}
	}
	if err != nil {
		return nil, err
	}
	return &Unit{key: key, mode: mode, source: source, scope: scope, result: result, prog: prog}, nil
}

func checkResult(mode Mode, result ir.Kind) error {
	switch mode {
	case ModeText:
		if result != ir.KindString {
			return fmt.Errorf("formatted text yields string, not %s", result)
		}
	case ModeSimple, ModeComplex:
		switch result {
		case ir.KindInt, ir.KindBool, ir.KindString:
		default:
			return fmt.Errorf("conditions cannot yield %s", result)
		}
	default:
		return fmt.Errorf("unknown compile mode %q", mode)
	}
	return nil
}

func errorKind(err error) string {
	if expr.IsParseError(err) {
		return "parse"
	}
	return "bind"
}

// AsSimple compiles a single-expression condition yielding T.
func AsSimple[T Result](c *Compiler, source string, scope Scope) (Condition[T], error) {
	u, err := c.Compile(ModeSimple, source, scope, KindOf[T]())
	if err != nil {
		return Condition[T]{}, err
	}
	return Condition[T]{unit: u}, nil
}

// AsComplex compiles a statement-form condition yielding T.
func AsComplex[T Result](c *Compiler, source string, scope Scope) (Condition[T], error) {
	u, err := c.Compile(ModeComplex, source, scope, KindOf[T]())
	if err != nil {
		return Condition[T]{}, err
	}
	return Condition[T]{unit: u}, nil
}

// AsFormattedText compiles a formatted-text template.
func (c *Compiler) AsFormattedText(source string, scope Scope) (Condition[string], error) {
	u, err := c.Compile(ModeText, source, scope, ir.KindString)
	if err != nil {
		return Condition[string]{}, err
	}
	return Condition[string]{unit: u}, nil
}
