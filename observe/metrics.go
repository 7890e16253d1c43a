// Package observe records memoization metrics with OpenTelemetry.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric names.
const (
	MetricHits          = "memoized.cache.hits"
	MetricMisses        = "memoized.cache.misses"
	MetricFailures      = "memoized.compute.failures"
	MetricDuration      = "memoized.compute.duration_ms"
	MetricInvalidations = "memoized.invalidations"
)

// Member identifies the memoized member a measurement belongs to.
type Member struct {
	Class string
	Name  string
}

func (m Member) attrs() metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("memoized.class", m.Class),
		attribute.String("memoized.member", m.Name),
	)
}

// Recorder receives cache events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Recorder interface {
	// Hit records a lookup answered from the cache.
	Hit(ctx context.Context, m Member)
	// Computed records a miss and the computation that served it.
	Computed(ctx context.Context, m Member, d time.Duration, err error)
	// Invalidated records an invalidation that cleared cached values.
	Invalidated(ctx context.Context, m Member)
}

type recorder struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	failures      metric.Int64Counter
	invalidations metric.Int64Counter
	duration      metric.Float64Histogram
}

// NewRecorder creates the instruments on meter.
func NewRecorder(meter metric.Meter) (Recorder, error) {
	hits, err := meter.Int64Counter(MetricHits,
		metric.WithDescription("Memoized calls answered from the cache"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter(MetricMisses,
		metric.WithDescription("Memoized calls that ran the original callable"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(MetricFailures,
		metric.WithDescription("Computations that returned an error and were not cached"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}
	invalidations, err := meter.Int64Counter(MetricInvalidations,
		metric.WithDescription("Member caches cleared by invalidation"),
		metric.WithUnit("{invalidation}"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of the original callable on a cache miss"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &recorder{
		hits:          hits,
		misses:        misses,
		failures:      failures,
		invalidations: invalidations,
		duration:      duration,
	}, nil
}

func (r *recorder) Hit(ctx context.Context, m Member) {
	r.hits.Add(ctx, 1, m.attrs())
}

func (r *recorder) Computed(ctx context.Context, m Member, d time.Duration, err error) {
	opt := m.attrs()
	r.misses.Add(ctx, 1, opt)
	if err != nil {
		r.failures.Add(ctx, 1, opt)
	}
	r.duration.Record(ctx, float64(d.Microseconds())/1000, opt)
}

func (r *recorder) Invalidated(ctx context.Context, m Member) {
	r.invalidations.Add(ctx, 1, m.attrs())
}

// Noop returns a Recorder backed by the no-op meter provider.
func Noop() Recorder {
	r, err := NewRecorder(noop.NewMeterProvider().Meter("memoized"))
	if err != nil {
		// The no-op meter never fails to create instruments.
		panic(err)
	}
	return r
}
