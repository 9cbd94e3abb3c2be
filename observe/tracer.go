package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Op names a cache operation.
type Op string

const (
	OpGet     Op = "get"
	OpPut     Op = "put"
	OpPurge   Op = "purge"
	OpCompute Op = "compute"
)

// CacheMeta describes the cache and function an operation belongs to.
type CacheMeta struct {
	Cache    string // cache instance name (required)
	Policy   string // policy tag, e.g. "lru"
	Variant  string // key naming variant (optional)
	Function string // fully-qualified function name (optional)
}

// SpanName returns the span name for op: funccache.<op>.
func (m CacheMeta) SpanName(op Op) string {
	return "funccache." + string(op)
}

func (m CacheMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cache.name", m.Cache),
		attribute.String("cache.policy", m.Policy),
	}
	if m.Variant != "" {
		attrs = append(attrs, attribute.String("cache.variant", m.Variant))
	}
	if m.Function != "" {
		attrs = append(attrs, attribute.String("cache.function", m.Function))
	}
	return attrs
}

// Outcome carries what an operation observed, for span attributes and
// metrics.
type Outcome struct {
	Hit bool

	// Evicted counts entries a put dropped to respect maxsize.
	Evicted int64

	// Deleted counts keys a purge removed.
	Deleted int64
}

// Tracer starts and ends spans around cache operations.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	StartSpan(ctx context.Context, op Op, meta CacheMeta) (context.Context, trace.Span)
	EndSpan(span trace.Span, op Op, out Outcome, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, op Op, meta CacheMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.String("cache.op", string(op)))
	return t.tracer.Start(ctx, meta.SpanName(op),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, op Op, out Outcome, err error) {
	switch op {
	case OpGet:
		span.SetAttributes(attribute.Bool("cache.hit", out.Hit))
	case OpPut:
		span.SetAttributes(attribute.Int64("cache.evicted", out.Evicted))
	case OpPurge:
		span.SetAttributes(attribute.Int64("cache.deleted", out.Deleted))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// NopTracer returns a tracer whose spans record nothing.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}
