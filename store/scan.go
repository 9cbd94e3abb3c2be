package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 256

// masterWalker is implemented by *redis.ClusterClient.
type masterWalker interface {
	ForEachMaster(ctx context.Context, fn func(ctx context.Context, client *redis.Client) error) error
}

// PurgeMatching deletes every key matching pattern and returns how many
// were removed. On a cluster client each master is scanned.
func (s *Store) PurgeMatching(ctx context.Context, pattern string) (int64, error) {
	return PurgeMatching(ctx, s.client, pattern)
}

// PurgeMatching deletes every key matching pattern on c.
func PurgeMatching(ctx context.Context, c Client, pattern string) (int64, error) {
	keys, err := Keys(ctx, c, pattern)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, key := range keys {
		n, err := c.Del(ctx, key).Result()
		if err != nil {
			return total, fmt.Errorf("store: purge %s: %w", key, err)
		}
		total += n
	}
	return total, nil
}

// Keys lists every key matching pattern on c.
func Keys(ctx context.Context, c Client, pattern string) ([]string, error) {
	if cc, ok := c.(masterWalker); ok {
		var (
			keys []string
			mu   sync.Mutex
		)
		err := cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			found, err := scan(ctx, node, pattern)
			if err != nil {
				return err
			}
			mu.Lock()
			keys = append(keys, found...)
			mu.Unlock()
			return nil
		})
		return keys, err
	}
	return scan(ctx, c, pattern)
}

func scan(ctx context.Context, c Client, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		page, next, err := c.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("store: scan %q: %w", pattern, err)
		}
		keys = append(keys, page...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}
