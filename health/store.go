package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/funccache/resilience"
	"github.com/jonwraymond/funccache/store"
)

// Pinger is the part of a Redis client the store checker needs.
type Pinger interface {
	redis.Scripter
	Ping(ctx context.Context) *redis.StatusCmd
}

// StoreCheckerConfig configures a StoreChecker.
type StoreCheckerConfig struct {
	// Name is the checker name. Default: "redis".
	Name string

	// SlowThreshold marks the store degraded when a ping takes longer.
	// Default: 100ms
	SlowThreshold time.Duration
}

// StoreChecker checks that Redis answers PING and can load the get and put
// scripts.
type StoreChecker struct {
	client Pinger
	config StoreCheckerConfig
}

// NewStoreChecker creates a checker for client.
func NewStoreChecker(client Pinger, config StoreCheckerConfig) *StoreChecker {
	if config.Name == "" {
		config.Name = "redis"
	}
	if config.SlowThreshold <= 0 {
		config.SlowThreshold = 100 * time.Millisecond
	}
	return &StoreChecker{client: client, config: config}
}

// Name returns the checker name.
func (c *StoreChecker) Name() string { return c.config.Name }

// Check pings Redis and loads the scripts.
func (c *StoreChecker) Check(ctx context.Context) Result {
	start := time.Now()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return Unhealthy("ping failed", err, Details{Unavailable: store.IsUnavailable(err)})
	}
	d := Details{PingLatency: time.Since(start)}

	if err := store.LoadScripts(ctx, c.client); err != nil {
		d.Unavailable = store.IsUnavailable(err)
		return Unhealthy("scripts not loadable", err, d)
	}
	d.Scripts = store.ScriptHashes()

	if d.PingLatency > c.config.SlowThreshold {
		return Degraded(fmt.Sprintf("ping took %v", d.PingLatency), d)
	}
	return Healthy("ping ok, scripts loaded", d)
}

// BreakerChecker reports the state of a store circuit breaker. An open
// circuit is degraded, not unhealthy: callers still get results, computed
// without the cache.
type BreakerChecker struct {
	cb *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker for cb.
func NewBreakerChecker(cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{cb: cb}
}

// Name returns "circuit".
func (c *BreakerChecker) Name() string { return "circuit" }

// Check reads the breaker state.
func (c *BreakerChecker) Check(context.Context) Result {
	m := c.cb.Metrics()
	d := Details{Circuit: m.State.String(), Failures: m.Failures, Rejected: m.Rejected}
	switch m.State {
	case resilience.StateClosed:
		return Healthy("circuit closed", d)
	case resilience.StateHalfOpen:
		return Degraded("circuit probing store", d)
	default:
		return Degraded("circuit open, cache bypassed", d)
	}
}

var (
	_ Checker = (*StoreChecker)(nil)
	_ Checker = (*BreakerChecker)(nil)
)
