package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/legends/internal/definition"
	"github.com/roach88/legends/internal/ir"
	"github.com/roach88/legends/internal/observe"
	"github.com/roach88/legends/internal/store"
)

// Step addresses one property evaluation: the definition at Path, its
// Property, the Key for a keyed property, and the bindings to evaluate
// with. Bindings must bind every parameter of the property.
type Step struct {
	Path     string      `yaml:"path" json:"path"`
	Property string      `yaml:"property" json:"property"`
	Key      string      `yaml:"key,omitempty" json:"key,omitempty"`
	Bindings ir.Bindings `yaml:"-" json:"-"`
}

// Evaluation is the outcome of one step.
type Evaluation struct {
	Seq      int64
	Path     string
	Property string
	Key      string
	Bindings ir.Bindings

	Kind  ir.Kind  // declared result kind, KindInvalid if the step never resolved
	Value ir.Value // nil when Err is set
	Err   error
	Code  string // ErrorCode(Err)

	RNGPosition int64
}

// Run is the result of executing a list of steps.
type Run struct {
	ID          string
	Seed        int64
	Evaluations []Evaluation
}

// Failures returns the number of evaluations that failed.
func (r *Run) Failures() int {
	n := 0
	for _, ev := range r.Evaluations {
		if ev.Err != nil {
			n++
		}
	}
	return n
}

// Sequencer issues strictly increasing sequence numbers. *Clock is the
// production implementation.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Runner evaluates steps against a compiled catalog.
type Runner struct {
	catalog *definition.Catalog
	clock   Sequencer
	store   *store.Store
	ids     RunIDGenerator
	label   string
	logger  *slog.Logger
	metrics *observe.Metrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock stamps every run from c instead of a fresh clock per run.
func WithClock(c Sequencer) Option {
	return func(r *Runner) { r.clock = c }
}

// WithStore records every run and evaluation in s.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithRunIDs sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(r *Runner) { r.ids = g }
}

// WithLabel sets the label stored with each run header.
func WithLabel(label string) Option {
	return func(r *Runner) { r.label = label }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metric instruments. Default: observe.Nop().
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a runner over cat. The catalog must already be
// attached and compiled; steps addressing uncompiled definitions fail with
// NOT_COMPILED.
func NewRunner(cat *definition.Catalog, opts ...Option) *Runner {
	r := &Runner{
		catalog: cat,
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
		metrics: observe.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates steps in order with one RNG seeded from seed. A failing
// evaluation is recorded and the run continues; Run itself fails only when
// ctx is done or the store rejects a write.
func (r *Runner) Run(ctx context.Context, seed int64, steps []Step) (*Run, error) {
	run := &Run{ID: r.ids.Generate(), Seed: seed, Evaluations: make([]Evaluation, 0, len(steps))}
	clock := r.clock
	if clock == nil {
		clock = NewClock()
	}

	if r.store != nil {
		err := r.store.WriteRun(ctx, store.Run{
			ID:              run.ID,
			Seed:            seed,
			Label:           r.label,
			EngineVersion:   ir.EngineVersion,
			LanguageVersion: ir.LanguageVersion,
		})
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
	}

	r.logger.Info("run started", "run", run.ID, "seed", seed, "steps", len(steps))

	rng := NewRNG(seed)
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("run %s: %w", run.ID, err)
		}

		ev := r.evaluate(rng, step)
		ev.Seq = clock.Next()
		run.Evaluations = append(run.Evaluations, ev)
		r.metrics.RecordEvaluation(ctx, ev.Err)

		if ev.Err != nil {
			r.logger.Debug("evaluation failed", "run", run.ID, "seq", ev.Seq, "path", ev.Path,
				"property", ev.Property, "code", ev.Code)
		}

		if r.store != nil {
			if err := r.store.WriteEvaluation(ctx, toRecord(run.ID, ev)); err != nil {
				return run, fmt.Errorf("run %s: %w", run.ID, err)
			}
		}
	}

	r.logger.Info("run finished", "run", run.ID, "evaluations", len(run.Evaluations), "failures", run.Failures())
	return run, nil
}

func (r *Runner) evaluate(rng *RNG, step Step) Evaluation {
	ev := Evaluation{
		Path:     step.Path,
		Property: step.Property,
		Key:      step.Key,
		Bindings: step.Bindings,
	}

	d, err := r.catalog.Lookup(step.Path)
	if err == nil {
		if p, ok := d.Schema().Property(step.Property); ok {
			ev.Kind = p.Result
		}
		ev.Value, err = definition.Evaluate(d, step.Property, step.Key, rng, step.Bindings)
	}
	if err != nil {
		ev.Value = nil
		ev.Err = err
		ev.Code = ErrorCode(err)
	}
	ev.RNGPosition = rng.Position()
	return ev
}

func toRecord(runID string, ev Evaluation) store.Evaluation {
	rec := store.Evaluation{
		RunID:       runID,
		Seq:         ev.Seq,
		Path:        ev.Path,
		Property:    ev.Property,
		Key:         ev.Key,
		Bindings:    ev.Bindings,
		Kind:        ev.Kind,
		Value:       ev.Value,
		ErrorCode:   ev.Code,
		RNGPosition: ev.RNGPosition,
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}
	return rec
}
