package observe

import (
	"context"
	"time"
)

// Instrumentation combines a tracer, metrics and a logger around cache
// operations.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: the span context is passed to the wrapped function.
// - Errors: errors from the wrapped function are recorded and returned
//   unchanged.
type Instrumentation struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumentation builds an Instrumentation. Nil arguments are replaced
// by no-op implementations.
func NewInstrumentation(tracer Tracer, metrics Metrics, logger Logger) *Instrumentation {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Instrumentation{tracer: tracer, metrics: metrics, logger: logger}
}

// Nop returns an Instrumentation that records nothing.
func Nop() *Instrumentation {
	return NewInstrumentation(nil, nil, nil)
}

// FromObserver builds an Instrumentation from an Observer's providers.
func FromObserver(obs Observer) (*Instrumentation, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewInstrumentation(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Logger returns the logger.
func (in *Instrumentation) Logger() Logger { return in.logger }

// Observe runs fn inside a span, records its metrics and logs failures,
// evictions and purges.
func (in *Instrumentation) Observe(ctx context.Context, op Op, meta CacheMeta, fn func(context.Context) (Outcome, error)) (Outcome, error) {
	ctx, span := in.tracer.StartSpan(ctx, op, meta)
	start := time.Now()

	out, err := fn(ctx)

	d := time.Since(start)
	in.tracer.EndSpan(span, op, out, err)
	in.metrics.Record(ctx, op, meta, out, d, err)

	log := in.logger.WithCache(meta)
	switch {
	case err != nil:
		log.Error(ctx, "cache "+string(op)+" failed", F("error", err), F("duration_ms", d.Milliseconds()))
	case op == OpPurge:
		log.Info(ctx, "cache purged", F("deleted", out.Deleted))
	case out.Evicted > 0:
		log.Debug(ctx, "cache entries evicted", F("evicted", out.Evicted))
	}
	return out, err
}
