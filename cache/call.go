package cache

import (
	"slices"
	"time"

	"github.com/jonwraymond/funccache/codec"
)

// CallOption adjusts a single Memoize call.
type CallOption func(*call)

type call struct {
	fieldTTL  time.Duration
	codec     codec.Codec
	names     []string
	positions []int
}

// FieldTTL bounds how long this call's result lives, independent of the
// key pair's TTL. Requires Redis 7.4 or newer.
func FieldTTL(d time.Duration) CallOption {
	return func(c *call) { c.fieldTTL = d }
}

// ValueCodec encodes this call's result with cd instead of the cache codec.
func ValueCodec(cd codec.Codec) CallOption {
	return func(c *call) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// Exclude leaves the named arguments out of the fingerprint, e.g. a logger
// or a request-scoped handle that does not affect the result.
func Exclude(names ...string) CallOption {
	return func(c *call) { c.names = append(c.names, names...) }
}

// ExcludePositions leaves the positional arguments at idx out of the
// fingerprint.
func ExcludePositions(idx ...int) CallOption {
	return func(c *call) { c.positions = append(c.positions, idx...) }
}

func (c *Cache) newCall(opts []CallOption) call {
	cl := call{codec: c.codec}
	for _, opt := range opts {
		opt(&cl)
	}
	return cl
}

// filter returns the arguments that take part in the fingerprint. The
// inputs are never modified.
func (cl call) filter(args []any, kwargs map[string]any) ([]any, map[string]any) {
	if len(cl.positions) > 0 {
		kept := make([]any, 0, len(args))
		for i, a := range args {
			if !slices.Contains(cl.positions, i) {
				kept = append(kept, a)
			}
		}
		args = kept
	}
	if len(cl.names) > 0 && len(kwargs) > 0 {
		kept := make(map[string]any, len(kwargs))
		for k, v := range kwargs {
			if !slices.Contains(cl.names, k) {
				kept[k] = v
			}
		}
		kwargs = kept
	}
	return args, kwargs
}
