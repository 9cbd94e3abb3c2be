package cache

import "time"

// Expiry turns a requested per-value TTL into the one sent to Redis.
type Expiry struct {
	// Max caps requested TTLs. If zero, no cap is applied.
	Max time.Duration
}

// Effective returns the TTL to use for one stored value. A non-positive
// request means the value shares the lifetime of its key pair.
func (e Expiry) Effective(requested time.Duration) time.Duration {
	if requested <= 0 {
		return 0
	}
	if e.Max > 0 && requested > e.Max {
		return e.Max
	}
	return requested
}
