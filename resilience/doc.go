// Package resilience protects cache dispatch from an unhealthy Redis.
//
// Store calls (the atomic get and put scripts) go through a circuit breaker,
// a retry loop that only retries transient unavailability, and a per-call
// deadline. Recomputations of a missed function go through a bulkhead that
// bounds how many run at once.
//
// None of this applies inside the scripts themselves: a script either runs
// atomically or not at all, so retrying a failed invocation is always safe.
//
// # Usage
//
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        MaxFailures:  5,
//	        ResetTimeout: 10 * time.Second,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	    resilience.WithStoreTimeout(250*time.Millisecond),
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 32})),
//	)
//
//	err := exec.Store(ctx, func(ctx context.Context) error {
//	    _, _, err := st.Get(ctx, pair, member)
//	    return err
//	})
package resilience
