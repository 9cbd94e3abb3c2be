package resilience

import (
	"context"
	"time"
)

// Executor composes the resilience patterns for the two kinds of work a
// cache does: store calls and recomputations.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - A zero Executor (or nil *Executor) runs operations directly.
type Executor struct {
	circuitBreaker *CircuitBreaker
	retry          *Retry
	timeout        *Timeout
	bulkhead       *Bulkhead
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker guards store calls with cb.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry retries transient store failures.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithStoreTimeout sets a deadline on each store call attempt.
func WithStoreTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = NewTimeout(d) }
}

// WithBulkhead bounds concurrent recomputations.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker {
	if e == nil {
		return nil
	}
	return e.circuitBreaker
}

// Store runs a store call. The order, outermost first, is:
// circuit breaker, retry, timeout. A tripped breaker therefore counts one
// failure per logical call, not per attempt.
func (e *Executor) Store(ctx context.Context, op func(context.Context) error) error {
	if e == nil {
		return op(ctx)
	}

	run := op
	if e.timeout != nil {
		inner := run
		run = func(ctx context.Context) error { return e.timeout.Execute(ctx, inner) }
	}
	if e.retry != nil {
		inner := run
		run = func(ctx context.Context) error { return e.retry.Execute(ctx, inner) }
	}
	if e.circuitBreaker != nil {
		inner := run
		run = func(ctx context.Context) error { return e.circuitBreaker.Execute(ctx, inner) }
	}
	return run(ctx)
}

// Compute runs a recomputation inside the bulkhead, if one is configured.
func (e *Executor) Compute(ctx context.Context, op func(context.Context) error) error {
	if e == nil || e.bulkhead == nil {
		return op(ctx)
	}
	return e.bulkhead.Execute(ctx, op)
}
