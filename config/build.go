package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/funccache/auth"
	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/codec"
	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/keyslot"
	"github.com/jonwraymond/funccache/observe"
	"github.com/jonwraymond/funccache/policy"
	"github.com/jonwraymond/funccache/resilience"
	"github.com/jonwraymond/funccache/secret"
	"github.com/jonwraymond/funccache/store"
)

// NewClient builds a Redis client for the redis section, resolving secret
// references in the URL, username and password with r.
func (c *Config) NewClient(ctx context.Context, r *secret.Resolver) (redis.UniversalClient, error) {
	rc := c.Redis
	resolve := func(field, value string) (string, error) {
		out, err := r.ResolveValue(ctx, value)
		if err != nil {
			return "", fmt.Errorf("config: redis.%s: %w", field, err)
		}
		return out, nil
	}

	var err error
	if rc.Username, err = resolve("username", rc.Username); err != nil {
		return nil, err
	}
	if rc.Password, err = resolve("password", rc.Password); err != nil {
		return nil, err
	}

	if rc.URL != "" {
		url, err := resolve("url", rc.URL)
		if err != nil {
			return nil, err
		}
		if rc.Cluster {
			opts, err := redis.ParseClusterURL(url)
			if err != nil {
				return nil, fmt.Errorf("config: redis.url: %w", err)
			}
			applyCluster(opts, rc)
			return redis.NewClusterClient(opts), nil
		}
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("config: redis.url: %w", err)
		}
		apply(opts, rc)
		return redis.NewClient(opts), nil
	}

	if rc.Cluster {
		opts := &redis.ClusterOptions{Addrs: rc.Addrs}
		applyCluster(opts, rc)
		return redis.NewClusterClient(opts), nil
	}
	opts := &redis.Options{Addr: rc.Addrs[0], DB: rc.DB}
	apply(opts, rc)
	return redis.NewClient(opts), nil
}

// apply overrides URL-derived options with explicitly configured ones.
func apply(o *redis.Options, rc RedisConfig) {
	if rc.Username != "" {
		o.Username = rc.Username
	}
	if rc.Password != "" {
		o.Password = rc.Password
	}
	if rc.DialTimeout > 0 {
		o.DialTimeout = rc.DialTimeout
	}
	if rc.ReadTimeout > 0 {
		o.ReadTimeout = rc.ReadTimeout
	}
	if rc.WriteTimeout > 0 {
		o.WriteTimeout = rc.WriteTimeout
	}
	if rc.PoolSize > 0 {
		o.PoolSize = rc.PoolSize
	}
}

func applyCluster(o *redis.ClusterOptions, rc RedisConfig) {
	if rc.Username != "" {
		o.Username = rc.Username
	}
	if rc.Password != "" {
		o.Password = rc.Password
	}
	if rc.DialTimeout > 0 {
		o.DialTimeout = rc.DialTimeout
	}
	if rc.ReadTimeout > 0 {
		o.ReadTimeout = rc.ReadTimeout
	}
	if rc.WriteTimeout > 0 {
		o.WriteTimeout = rc.WriteTimeout
	}
	if rc.PoolSize > 0 {
		o.PoolSize = rc.PoolSize
	}
}

// Executor builds the resilience executor for the resilience section.
// The breaker is returned separately for health reporting.
func (c *Config) Executor() (*resilience.Executor, *resilience.CircuitBreaker) {
	rs := c.Resilience
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:  rs.BreakerMaxFailures,
		ResetTimeout: rs.BreakerResetTimeout,
	})
	opts := []resilience.ExecutorOption{
		resilience.WithCircuitBreaker(cb),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  rs.RetryAttempts,
			InitialDelay: rs.RetryInitialDelay,
			Jitter:       true,
		})),
	}
	if rs.StoreTimeout > 0 {
		opts = append(opts, resilience.WithStoreTimeout(rs.StoreTimeout))
	}
	if rs.MaxRecompute > 0 {
		opts = append(opts, resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: rs.MaxRecompute,
			MaxWait:       rs.RecomputeWait,
		})))
	}
	return resilience.NewExecutor(opts...), cb
}

// CacheOptions converts the cache section into cache options. exec and obs
// may be nil.
func (c *Config) CacheOptions(exec *resilience.Executor, obs observe.Observer) ([]cache.Option, error) {
	cc := c.Cache
	kind, err := policy.Parse(cc.Policy)
	if err != nil {
		return nil, err
	}
	variant, err := keyslot.ParseVariant(cc.Variant)
	if err != nil {
		return nil, err
	}
	mode, err := store.ParseTTLMode(cc.TTLMode)
	if err != nil {
		return nil, err
	}
	cd, err := codec.Lookup(cc.Codec)
	if err != nil {
		return nil, err
	}
	fp, err := c.Fingerprinter()
	if err != nil {
		return nil, err
	}

	opts := []cache.Option{
		cache.WithPolicy(kind),
		cache.WithVariant(variant),
		cache.WithPrefix(cc.Prefix),
		cache.WithMaxSize(cc.MaxSize),
		cache.WithTTL(cc.TTL),
		cache.WithTTLMode(mode),
		cache.WithMaxFieldTTL(cc.MaxFieldTTL),
		cache.WithCodec(cd),
		cache.WithFingerprinter(fp),
		cache.WithSingleflight(cc.Singleflight),
	}
	if exec != nil {
		opts = append(opts, cache.WithExecutor(exec))
	}
	if obs != nil {
		opts = append(opts, cache.WithObserver(obs))
	}
	return opts, nil
}

// Fingerprinter builds the argument fingerprinter for the cache section.
func (c *Config) Fingerprinter() (*fingerprint.Fingerprinter, error) {
	return fingerprint.New(fingerprint.WithDigest(c.Cache.Digest))
}

// NewCache builds the configured cache on client.
func (c *Config) NewCache(client store.Client, exec *resilience.Executor, obs observe.Observer) (*cache.Cache, error) {
	opts, err := c.CacheOptions(exec, obs)
	if err != nil {
		return nil, err
	}
	return cache.New(c.Cache.Name, client, opts...)
}

// Authenticator builds the API key authenticator for the serve section,
// resolving secret references in the keys with r. It returns nil when no
// keys are configured.
func (c *Config) Authenticator(ctx context.Context, r *secret.Resolver) (*auth.APIKeyAuthenticator, error) {
	if len(c.Serve.APIKeys) == 0 {
		return nil, nil
	}
	keys := make([]string, len(c.Serve.APIKeys))
	for i, k := range c.Serve.APIKeys {
		v, err := r.ResolveValue(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("config: serve.api_keys[%d]: %w", i, err)
		}
		keys[i] = v
	}
	store, err := auth.StaticKeys("operator", keys...)
	if err != nil {
		return nil, fmt.Errorf("config: serve.api_keys: %w", err)
	}
	if store.Len() == 0 {
		return nil, fmt.Errorf("%w: serve.api_keys resolved to empty keys", ErrInvalid)
	}
	return auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{HeaderName: c.Serve.APIKeyHeader}, store), nil
}
