package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/funccache/codec"
	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/keyslot"
	"github.com/jonwraymond/funccache/observe"
	"github.com/jonwraymond/funccache/policy"
	"github.com/jonwraymond/funccache/store"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the complete funccache configuration.
type Config struct {
	Cache      CacheConfig      `mapstructure:"cache"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Observe    ObserveConfig    `mapstructure:"observe"`
	Serve      ServeConfig      `mapstructure:"serve"`
}

// CacheConfig describes one cache instance.
type CacheConfig struct {
	Name         string        `mapstructure:"name"`
	Policy       string        `mapstructure:"policy"`
	Variant      string        `mapstructure:"variant"`
	Prefix       string        `mapstructure:"prefix"`
	MaxSize      int64         `mapstructure:"max_size"`
	TTL          time.Duration `mapstructure:"ttl"`
	TTLMode      string        `mapstructure:"ttl_mode"`
	MaxFieldTTL  time.Duration `mapstructure:"max_field_ttl"`
	Codec        string        `mapstructure:"codec"`
	Digest       string        `mapstructure:"digest"`
	Singleflight bool          `mapstructure:"singleflight"`
}

// RedisConfig selects and authenticates the Redis deployment.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL. When set it takes precedence
	// over Addrs.
	URL          string        `mapstructure:"url"`
	Addrs        []string      `mapstructure:"addrs"`
	Cluster      bool          `mapstructure:"cluster"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
}

// ResilienceConfig configures store protection and recompute limits.
type ResilienceConfig struct {
	RetryAttempts       int           `mapstructure:"retry_attempts"`
	RetryInitialDelay   time.Duration `mapstructure:"retry_initial_delay"`
	BreakerMaxFailures  int           `mapstructure:"breaker_max_failures"`
	BreakerResetTimeout time.Duration `mapstructure:"breaker_reset_timeout"`
	StoreTimeout        time.Duration `mapstructure:"store_timeout"`
	MaxRecompute        int64         `mapstructure:"max_recompute"`
	RecomputeWait       time.Duration `mapstructure:"recompute_wait"`
}

// ObserveConfig mirrors observe.Config with file-friendly keys.
type ObserveConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`
	Tracing     struct {
		Enabled   bool    `mapstructure:"enabled"`
		Exporter  string  `mapstructure:"exporter"`
		SamplePct float64 `mapstructure:"sample_pct"`
	} `mapstructure:"tracing"`
	Metrics struct {
		Enabled  bool   `mapstructure:"enabled"`
		Exporter string `mapstructure:"exporter"`
	} `mapstructure:"metrics"`
	Logging struct {
		Enabled bool   `mapstructure:"enabled"`
		Level   string `mapstructure:"level"`
	} `mapstructure:"logging"`
}

// ServeConfig configures the operator HTTP endpoints.
type ServeConfig struct {
	Addr         string `mapstructure:"addr"`
	APIKeyHeader string `mapstructure:"api_key_header"`

	// APIKeys protect /health and /metrics. Entries may be secret
	// references. Empty leaves the endpoints open.
	APIKeys []string `mapstructure:"api_keys"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	var c Config
	c.Cache = CacheConfig{
		Name:         "default",
		Policy:       policy.LRU.Tag(),
		Variant:      keyslot.Shared.String(),
		Prefix:       keyslot.DefaultPrefix,
		MaxSize:      1024,
		TTL:          time.Hour,
		TTLMode:      store.Sliding.String(),
		Codec:        codec.NameJSON,
		Digest:       fingerprint.DigestMD5,
		Singleflight: true,
	}
	c.Redis = RedisConfig{
		Addrs:       []string{"localhost:6379"},
		DialTimeout: 5 * time.Second,
		ReadTimeout: 3 * time.Second,
	}
	c.Resilience = ResilienceConfig{
		RetryAttempts:       3,
		RetryInitialDelay:   10 * time.Millisecond,
		BreakerMaxFailures:  5,
		BreakerResetTimeout: 10 * time.Second,
		StoreTimeout:        time.Second,
	}
	c.Observe.ServiceName = "funccache"
	c.Observe.Tracing.Exporter = "none"
	c.Observe.Tracing.SamplePct = 1
	c.Observe.Metrics.Exporter = "none"
	c.Observe.Logging.Level = "info"
	c.Serve.Addr = ":8080"
	return c
}

// Validate checks every section. Names of policies, variants, TTL modes,
// codecs and digests must be known.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Cache.Name == "" {
		add("cache.name is required")
	}
	if _, err := policy.Parse(c.Cache.Policy); err != nil {
		add("cache.policy: %v", err)
	}
	if _, err := keyslot.ParseVariant(c.Cache.Variant); err != nil {
		add("cache.variant: %v", err)
	}
	if _, err := store.ParseTTLMode(c.Cache.TTLMode); err != nil {
		add("cache.ttl_mode: %v", err)
	}
	if c.Cache.MaxSize < 0 {
		add("cache.max_size must not be negative")
	}
	if c.Cache.TTL < 0 {
		add("cache.ttl must not be negative")
	}
	if _, err := codec.Lookup(c.Cache.Codec); err != nil {
		add("cache.codec: %v", err)
	}
	if _, err := fingerprint.New(fingerprint.WithDigest(c.Cache.Digest)); err != nil {
		add("cache.digest: %v", err)
	}

	if c.Redis.URL == "" && len(c.Redis.Addrs) == 0 {
		add("redis.url or redis.addrs is required")
	}
	if !c.Redis.Cluster && c.Redis.URL == "" && len(c.Redis.Addrs) > 1 {
		add("redis.addrs has %d entries; set redis.cluster for more than one", len(c.Redis.Addrs))
	}

	if c.Resilience.MaxRecompute < 0 {
		add("resilience.max_recompute must not be negative")
	}

	if c.Serve.Addr == "" {
		add("serve.addr is required")
	}

	obs := c.ObserveConfig()
	if err := obs.Validate(); err != nil {
		add("observe: %v", err)
	}
	return errors.Join(errs...)
}

// ObserveConfig converts the observe section.
func (c *Config) ObserveConfig() observe.Config {
	o := c.Observe
	return observe.Config{
		ServiceName: o.ServiceName,
		Version:     o.Version,
		Tracing: observe.TracingConfig{
			Enabled:   o.Tracing.Enabled,
			Exporter:  o.Tracing.Exporter,
			SamplePct: o.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  o.Metrics.Enabled,
			Exporter: o.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: o.Logging.Enabled,
			Level:   o.Logging.Level,
		},
	}
}
