package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/funccache/keyslot"
	"github.com/jonwraymond/funccache/policy"
)

// Client is the subset of go-redis the store needs. *redis.Client,
// *redis.ClusterClient and redis.UniversalClient all satisfy it.
type Client interface {
	redis.Scripter
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	HLen(ctx context.Context, key string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var (
	_ Client = (*redis.Client)(nil)
	_ Client = (*redis.ClusterClient)(nil)
	_ Client = (redis.UniversalClient)(nil)
)

// Config fixes the behaviour of a Store. It is immutable once the Store is
// built.
type Config struct {
	Policy policy.Kind
	// MaxSize bounds the number of entries; 0 means unbounded.
	MaxSize int64
	TTL     TTL
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Policy.Valid() {
		return fmt.Errorf("%w: unknown policy %d", ErrInvalidConfig, int(c.Policy))
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("%w: negative maxsize %d", ErrInvalidConfig, c.MaxSize)
	}
	return c.TTL.Validate()
}

// Store runs the Get/Put scripts for one policy configuration.
//
// Contract:
// - Concurrency: safe for concurrent use; atomicity comes from Redis
//   scripting, the Store holds no locks.
// - Context: every method honors ctx cancellation via the client.
// - Errors: a miss is never an error; transport failures are wrapped and
//   classifiable with IsUnavailable.
type Store struct {
	client Client
	cfg    Config
	tag    string
}

// New creates a Store.
func New(client Client, cfg Config) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{client: client, cfg: cfg, tag: cfg.Policy.Tag()}, nil
}

// Config returns the store configuration.
func (s *Store) Config() Config { return s.cfg }

// Client returns the underlying Redis client.
func (s *Store) Client() Client { return s.client }

// Get looks up member. On a hit it applies the policy's hit refresh and, in
// sliding mode, re-arms the TTL of both keys.
func (s *Store) Get(ctx context.Context, pair keyslot.Pair, member []byte) ([]byte, bool, error) {
	if len(member) == 0 {
		return nil, false, ErrEmptyMember
	}

	res, err := getScript.Run(ctx, s.client, pair.Keys(),
		s.tag,
		millis(s.cfg.TTL.Duration),
		s.cfg.TTL.slidingArg(),
		member,
	).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", pair.Values, err)
	}

	switch v := res.(type) {
	case string:
		return []byte(v), true, nil
	case []byte:
		return v, true, nil
	default:
		return nil, false, fmt.Errorf("store: get %s: unexpected reply %T", pair.Values, res)
	}
}

// Put stores value under member and returns how many entries were evicted
// to make room. Updating an existing member never evicts. A positive
// fieldTTL bounds the lifetime of this one value (Redis 7.4+).
func (s *Store) Put(ctx context.Context, pair keyslot.Pair, member, value []byte, fieldTTL time.Duration) (int64, error) {
	if len(member) == 0 {
		return 0, ErrEmptyMember
	}

	n, err := putScript.Run(ctx, s.client, pair.Keys(),
		s.tag,
		s.cfg.MaxSize,
		millis(s.cfg.TTL.Duration),
		s.cfg.TTL.slidingArg(),
		member,
		value,
		millis(fieldTTL),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("store: put %s: %w", pair.Values, err)
	}
	return n, nil
}

// Purge deletes both keys of pair unconditionally.
func (s *Store) Purge(ctx context.Context, pair keyslot.Pair) (int64, error) {
	// Keys in different slots cannot share one DEL on a cluster.
	if keyslot.SameSlot(pair.Index, pair.Values) {
		n, err := s.client.Del(ctx, pair.Index, pair.Values).Result()
		if err != nil {
			return 0, fmt.Errorf("store: purge %s: %w", pair.Values, err)
		}
		return n, nil
	}

	var total int64
	for _, key := range pair.Keys() {
		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return total, fmt.Errorf("store: purge %s: %w", key, err)
		}
		total += n
	}
	return total, nil
}

// Size returns the number of values held by pair.
func (s *Store) Size(ctx context.Context, pair keyslot.Pair) (int64, error) {
	n, err := s.client.HLen(ctx, pair.Values).Result()
	if err != nil {
		return 0, fmt.Errorf("store: size %s: %w", pair.Values, err)
	}
	return n, nil
}
