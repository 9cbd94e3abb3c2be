package cache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/funccache/codec"
	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/keyslot"
	"github.com/jonwraymond/funccache/observe"
	"github.com/jonwraymond/funccache/policy"
	"github.com/jonwraymond/funccache/resilience"
	"github.com/jonwraymond/funccache/store"
)

// Defaults applied by New.
const (
	DefaultMaxSize = 1024
	DefaultTTL     = time.Hour
)

// Cache memoizes function results in one Redis-backed cache instance.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Context: every method honors ctx cancellation via the Redis client.
// - Errors: a miss is never an error; store unavailability is reported by
//   the low-level methods and absorbed by Memoize.
type Cache struct {
	name    string
	prefix  string
	variant keyslot.Variant
	kind    policy.Kind

	store  *store.Store
	codec  codec.Codec
	fp     *fingerprint.Fingerprinter
	expiry Expiry

	exec     *resilience.Executor
	bulkhead *resilience.Bulkhead
	inst     *observe.Instrumentation
	group    *singleflight.Group

	shared keyslot.Pair
}

type config struct {
	prefix       string
	variant      keyslot.Variant
	kind         policy.Kind
	maxSize      int64
	ttl          store.TTL
	codec        codec.Codec
	fp           *fingerprint.Fingerprinter
	maxFieldTTL  time.Duration
	observer     observe.Observer
	inst         *observe.Instrumentation
	exec         *resilience.Executor
	bulkhead     *resilience.Bulkhead
	singleflight bool
}

// Option configures a Cache.
type Option func(*config) error

// WithPolicy selects the eviction policy. Default: policy.LRU.
func WithPolicy(k policy.Kind) Option {
	return func(c *config) error {
		if !k.Valid() {
			return fmt.Errorf("%w: policy %d", policy.ErrUnknownPolicy, int(k))
		}
		c.kind = k
		return nil
	}
}

// WithVariant selects the key naming variant. Default: keyslot.Shared.
func WithVariant(v keyslot.Variant) Option {
	return func(c *config) error {
		c.variant = v
		return nil
	}
}

// WithPrefix sets the key prefix. Default: keyslot.DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(c *config) error {
		c.prefix = prefix
		return nil
	}
}

// WithMaxSize bounds the number of entries per key pair. 0 means unbounded.
// Default: 1024.
func WithMaxSize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("%w: maxsize %d", ErrInvalidValue, n)
		}
		c.maxSize = n
		return nil
	}
}

// WithTTL sets the lifetime of the key pair. 0 means no expiry.
// Default: 1h.
func WithTTL(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return fmt.Errorf("%w: ttl %v", ErrInvalidValue, d)
		}
		c.ttl.Duration = d
		return nil
	}
}

// WithTTLMode selects sliding or fixed expiry. Default: store.Sliding.
func WithTTLMode(m store.TTLMode) Option {
	return func(c *config) error {
		c.ttl.Mode = m
		return nil
	}
}

// WithCodec sets the codec used for stored values. Default: JSON.
func WithCodec(cd codec.Codec) Option {
	return func(c *config) error {
		if cd == nil {
			return fmt.Errorf("%w: nil codec", ErrInvalidValue)
		}
		c.codec = cd
		return nil
	}
}

// WithFingerprinter sets how arguments are fingerprinted.
// Default: fingerprint.New() (JSON arguments, MD5).
func WithFingerprinter(fp *fingerprint.Fingerprinter) Option {
	return func(c *config) error {
		if fp == nil {
			return fmt.Errorf("%w: nil fingerprinter", ErrInvalidValue)
		}
		c.fp = fp
		return nil
	}
}

// WithMaxFieldTTL caps per-call field TTLs.
func WithMaxFieldTTL(d time.Duration) Option {
	return func(c *config) error {
		c.maxFieldTTL = d
		return nil
	}
}

// WithObserver records spans, metrics and logs through obs.
func WithObserver(obs observe.Observer) Option {
	return func(c *config) error {
		if obs == nil {
			return observe.ErrNilObserver
		}
		c.observer = obs
		return nil
	}
}

// WithInstrumentation records through an existing Instrumentation.
func WithInstrumentation(in *observe.Instrumentation) Option {
	return func(c *config) error {
		c.inst = in
		return nil
	}
}

// WithExecutor protects store calls with e.
func WithExecutor(e *resilience.Executor) Option {
	return func(c *config) error {
		c.exec = e
		return nil
	}
}

// WithBulkhead bounds concurrent recomputations with b, overriding the
// executor's bulkhead.
func WithBulkhead(b *resilience.Bulkhead) Option {
	return func(c *config) error {
		c.bulkhead = b
		return nil
	}
}

// WithSingleflight collapses concurrent recomputations of the same call
// into one. Default: enabled.
func WithSingleflight(enabled bool) Option {
	return func(c *config) error {
		c.singleflight = enabled
		return nil
	}
}

// New creates a cache named name on client.
func New(name string, client store.Client, opts ...Option) (*Cache, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	cfg := config{
		prefix:       keyslot.DefaultPrefix,
		variant:      keyslot.Shared,
		kind:         policy.LRU,
		maxSize:      DefaultMaxSize,
		ttl:          store.TTL{Duration: DefaultTTL, Mode: store.Sliding},
		codec:        codec.Default,
		singleflight: true,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.fp == nil {
		fp, err := fingerprint.New()
		if err != nil {
			return nil, err
		}
		cfg.fp = fp
	}

	st, err := store.New(client, store.Config{Policy: cfg.kind, MaxSize: cfg.maxSize, TTL: cfg.ttl})
	if err != nil {
		return nil, err
	}

	inst := cfg.inst
	if inst == nil && cfg.observer != nil {
		if inst, err = observe.FromObserver(cfg.observer); err != nil {
			return nil, err
		}
	}
	if inst == nil {
		inst = observe.Nop()
	}

	c := &Cache{
		name:     name,
		prefix:   cfg.prefix,
		variant:  cfg.variant,
		kind:     cfg.kind,
		store:    st,
		codec:    cfg.codec,
		fp:       cfg.fp,
		expiry:   Expiry{Max: cfg.maxFieldTTL},
		exec:     cfg.exec,
		bulkhead: cfg.bulkhead,
		inst:     inst,
	}
	if cfg.singleflight {
		c.group = &singleflight.Group{}
	}

	if !cfg.variant.PerFunction() {
		if c.shared, err = keyslot.Derive(c.prefix, name, cfg.kind.Tag(), cfg.variant, nil); err != nil {
			return nil, err
		}
	} else if _, err := keyslot.Pattern(c.prefix, name, cfg.kind.Tag(), cfg.variant); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

// Policy returns the eviction policy.
func (c *Cache) Policy() policy.Kind { return c.kind }

// Variant returns the key naming variant.
func (c *Cache) Variant() keyslot.Variant { return c.variant }

// Store returns the underlying store.
func (c *Cache) Store() *store.Store { return c.store }

// Codec returns the value codec.
func (c *Cache) Codec() codec.Codec { return c.codec }

// Fingerprinter returns the argument fingerprinter.
func (c *Cache) Fingerprinter() *fingerprint.Fingerprinter { return c.fp }

// Pair returns the key pair holding results of fn. fn may be nil for the
// shared variants.
func (c *Cache) Pair(fn *fingerprint.Identity) (keyslot.Pair, error) {
	if !c.variant.PerFunction() {
		return c.shared, nil
	}
	return keyslot.Derive(c.prefix, c.name, c.kind.Tag(), c.variant, fn)
}

// Pattern returns the SCAN pattern covering every pair of this cache.
func (c *Cache) Pattern() string {
	p, _ := keyslot.Pattern(c.prefix, c.name, c.kind.Tag(), c.variant)
	return p
}

// Fingerprint computes the member under which a call's result is stored.
func (c *Cache) Fingerprint(fn fingerprint.Identity, args []any, kwargs map[string]any) ([]byte, error) {
	return c.fp.Sum(fn, args, kwargs)
}

func (c *Cache) meta(fn *fingerprint.Identity) observe.CacheMeta {
	m := observe.CacheMeta{Cache: c.name, Policy: c.kind.Tag(), Variant: c.variant.String()}
	if fn != nil {
		m.Function = fn.Name
	}
	return m
}

// Get looks member up in the pair of fn.
func (c *Cache) Get(ctx context.Context, fn *fingerprint.Identity, member []byte) ([]byte, bool, error) {
	pair, err := c.Pair(fn)
	if err != nil {
		return nil, false, err
	}

	var value []byte
	out, err := c.inst.Observe(ctx, observe.OpGet, c.meta(fn), func(ctx context.Context) (observe.Outcome, error) {
		var hit bool
		err := c.exec.Store(ctx, func(ctx context.Context) error {
			var err error
			value, hit, err = c.store.Get(ctx, pair, member)
			return err
		})
		return observe.Outcome{Hit: hit}, err
	})
	if err != nil {
		return nil, false, err
	}
	return value, out.Hit, nil
}

// Put stores value under member in the pair of fn and returns the number
// of evicted entries. fieldTTL is clamped by WithMaxFieldTTL; 0 means the
// value lives as long as the pair.
func (c *Cache) Put(ctx context.Context, fn *fingerprint.Identity, member, value []byte, fieldTTL time.Duration) (int64, error) {
	pair, err := c.Pair(fn)
	if err != nil {
		return 0, err
	}

	ttl := c.expiry.Effective(fieldTTL)
	out, err := c.inst.Observe(ctx, observe.OpPut, c.meta(fn), func(ctx context.Context) (observe.Outcome, error) {
		var evicted int64
		err := c.exec.Store(ctx, func(ctx context.Context) error {
			var err error
			evicted, err = c.store.Put(ctx, pair, member, value, ttl)
			return err
		})
		return observe.Outcome{Evicted: evicted}, err
	})
	return out.Evicted, err
}

// Purge deletes the pair of fn (nil for shared variants) and returns the
// number of keys removed.
func (c *Cache) Purge(ctx context.Context, fn *fingerprint.Identity) (int64, error) {
	pair, err := c.Pair(fn)
	if err != nil {
		return 0, err
	}
	out, err := c.inst.Observe(ctx, observe.OpPurge, c.meta(fn), func(ctx context.Context) (observe.Outcome, error) {
		n, err := c.store.Purge(ctx, pair)
		return observe.Outcome{Deleted: n}, err
	})
	return out.Deleted, err
}

// PurgeAll deletes every pair this cache owns, across all functions for
// the per-function variants.
func (c *Cache) PurgeAll(ctx context.Context) (int64, error) {
	out, err := c.inst.Observe(ctx, observe.OpPurge, c.meta(nil), func(ctx context.Context) (observe.Outcome, error) {
		n, err := c.store.PurgeMatching(ctx, c.Pattern())
		return observe.Outcome{Deleted: n}, err
	})
	return out.Deleted, err
}

// Size returns the number of values held for fn (nil for shared variants).
func (c *Cache) Size(ctx context.Context, fn *fingerprint.Identity) (int64, error) {
	pair, err := c.Pair(fn)
	if err != nil {
		return 0, err
	}
	return c.store.Size(ctx, pair)
}
