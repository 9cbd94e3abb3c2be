package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricOps       = "funccache.ops.total"
	MetricHits      = "funccache.hits"
	MetricMisses    = "funccache.misses"
	MetricEvictions = "funccache.evictions"
	MetricErrors    = "funccache.errors"
	MetricDuration  = "funccache.op.duration_ms"
)

// Metrics records cache operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	Record(ctx context.Context, op Op, meta CacheMeta, out Outcome, d time.Duration, err error)
}

type metricsImpl struct {
	ops       metric.Int64Counter
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
	errors    metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewMetrics creates the cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.ops, MetricOps, "Cache operations", "{op}"},
		{&m.hits, MetricHits, "Cache lookups that found a value", "{hit}"},
		{&m.misses, MetricMisses, "Cache lookups that found nothing", "{miss}"},
		{&m.evictions, MetricEvictions, "Entries evicted to respect maxsize", "{entry}"},
		{&m.errors, MetricErrors, "Failed cache operations", "{error}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	m.duration = duration
	return m, nil
}

func (m *metricsImpl) Record(ctx context.Context, op Op, meta CacheMeta, out Outcome, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("cache.name", meta.Cache),
		attribute.String("cache.policy", meta.Policy),
		attribute.String("cache.op", string(op)),
	)

	m.ops.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(d.Microseconds())/1000, attrs)

	if err != nil {
		m.errors.Add(ctx, 1, attrs)
		return
	}

	switch op {
	case OpGet:
		if out.Hit {
			m.hits.Add(ctx, 1, attrs)
		} else {
			m.misses.Add(ctx, 1, attrs)
		}
	case OpPut:
		if out.Evicted > 0 {
			m.evictions.Add(ctx, out.Evicted, attrs)
		}
	}
}

type nopMetrics struct{}

// NopMetrics returns metrics that record nothing.
func NopMetrics() Metrics { return nopMetrics{} }

func (nopMetrics) Record(context.Context, Op, CacheMeta, Outcome, time.Duration, error) {}
