// Package observe provides the OpenTelemetry metric instruments recorded by
// the condition compiler and the evaluation runner.
//
// Components take a [*Metrics] through their options. [Nop] returns an
// instance backed by the no-op provider, which is the default everywhere;
// tests should use [NewMetrics] with an sdk MeterProvider and a ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all legends metrics.
const meterName = "github.com/roach88/legends"

// Metrics holds the metric instruments. All fields are safe for concurrent
// use; the OTel types handle their own synchronisation.
type Metrics struct {
	// CacheHits counts compile requests served from the compilation cache.
	// Use with attribute.String("mode", ...).
	CacheHits metric.Int64Counter

	// CacheMisses counts compile requests that parsed and bound source text.
	CacheMisses metric.Int64Counter

	// CompileErrors counts failed compiles. Use with attributes:
	//   attribute.String("mode", ...), attribute.String("kind", "parse"|"bind")
	CompileErrors metric.Int64Counter

	// CompileDuration tracks parse+bind latency of cache misses.
	CompileDuration metric.Float64Histogram

	// Evaluations counts evaluations. Use with attribute.String("status", "ok"|"error").
	Evaluations metric.Int64Counter
}

// compileBuckets are histogram boundaries in seconds; parse+bind of a
// condition is expected to land in the microsecond range.
var compileBuckets = []float64{
	0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01,
}

// NewMetrics creates a [Metrics] using the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CacheHits, err = m.Int64Counter("legends.compiler.cache.hits",
		metric.WithDescription("Compile requests served from the compilation cache."),
	); err != nil {
		return nil, err
	}
	if met.CacheMisses, err = m.Int64Counter("legends.compiler.cache.misses",
		metric.WithDescription("Compile requests that parsed and bound source text."),
	); err != nil {
		return nil, err
	}
	if met.CompileErrors, err = m.Int64Counter("legends.compiler.errors",
		metric.WithDescription("Failed compiles by mode and error kind."),
	); err != nil {
		return nil, err
	}
	if met.CompileDuration, err = m.Float64Histogram("legends.compiler.duration",
		metric.WithDescription("Latency of parse and bind for cache misses."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(compileBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Evaluations, err = m.Int64Counter("legends.evaluations",
		metric.WithDescription("Condition evaluations by status."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Nop returns metrics backed by the no-op provider.
func Nop() *Metrics {
	met, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic("observe: noop metrics: " + err.Error())
	}
	return met
}

// Global returns metrics backed by [otel.GetMeterProvider].
func Global() (*Metrics, error) {
	return NewMetrics(otel.GetMeterProvider())
}

// RecordCacheHit records a cache hit for the given mode.
func (m *Metrics) RecordCacheHit(ctx context.Context, mode string) {
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", mode)))
}

// RecordCacheMiss records a miss and the parse+bind latency.
func (m *Metrics) RecordCacheMiss(ctx context.Context, mode string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	m.CacheMisses.Add(ctx, 1, attrs)
	m.CompileDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordCompileError records a failed compile.
func (m *Metrics) RecordCompileError(ctx context.Context, mode, kind string) {
	m.CompileErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("kind", kind),
		),
	)
}

// RecordEvaluation records one evaluation outcome.
func (m *Metrics) RecordEvaluation(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Evaluations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
