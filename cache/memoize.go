package cache

import (
	"context"
	"fmt"

	"github.com/jonwraymond/funccache/fingerprint"
	"github.com/jonwraymond/funccache/observe"
)

// Memoize returns the cached result of calling the function fn with args
// and kwargs, running compute and caching its result on a miss.
//
// The steps taken follow ModeFrom(ctx). Errors returned by compute are
// passed through and never cached. A result that cannot be decoded is
// treated as a miss; one that cannot be encoded is returned uncached.
// When the store is unreachable or its circuit is open, the result is
// computed directly.
func Memoize[T any](
	ctx context.Context,
	c *Cache,
	fn fingerprint.Identity,
	args []any,
	kwargs map[string]any,
	compute func(context.Context) (T, error),
	opts ...CallOption,
) (T, error) {
	var zero T
	if c == nil {
		return zero, ErrNilCache
	}
	if compute == nil {
		return zero, ErrNilCompute
	}

	cl := c.newCall(opts)
	mode := ModeFrom(ctx)
	stats := StatsFrom(ctx)
	log := c.inst.Logger().WithCache(c.meta(&fn))
	stats.incr(countCall)

	fargs, fkwargs := cl.filter(args, kwargs)
	member, err := c.fp.Sum(fn, fargs, fkwargs)
	if err != nil {
		return zero, err
	}

	bypass := false
	if mode.Read {
		stats.incr(countRead)
		raw, hit, err := c.Get(ctx, &fn, member)
		switch {
		case err != nil && bypassable(err):
			bypass = true
			stats.incr(countMiss)
			log.Warn(ctx, "store unavailable, computing without cache", observe.F("error", err))
		case err != nil:
			return zero, err
		case hit:
			var v T
			err := cl.codec.Unmarshal(raw, &v)
			if err == nil {
				stats.incr(countHit)
				return v, nil
			}
			log.Warn(ctx, "cached value not decodable, recomputing", observe.F("error", err), observe.F("codec", cl.codec.Name()))
			stats.incr(countMiss)
		default:
			stats.incr(countMiss)
		}
	}

	if !mode.Exec {
		return zero, ErrCacheMiss
	}

	v, ran, err := run(ctx, c, &fn, member, compute)
	if err != nil {
		return zero, err
	}
	if !ran {
		return v, nil
	}
	stats.incr(countExec)

	if !mode.Write || bypass {
		return v, nil
	}
	data, err := cl.codec.Marshal(v)
	if err != nil {
		log.Warn(ctx, "result not encodable, not cached", observe.F("error", err), observe.F("codec", cl.codec.Name()))
		return v, nil
	}
	if _, err := c.Put(ctx, &fn, member, data, cl.fieldTTL); err != nil {
		if bypassable(err) {
			log.Warn(ctx, "store unavailable, result not cached", observe.F("error", err))
			return v, nil
		}
		return zero, err
	}
	stats.incr(countWrite)
	return v, nil
}

// run executes compute inside the bulkhead and, when enabled, the
// singleflight group. ran is false for callers that shared another
// caller's execution.
func run[T any](ctx context.Context, c *Cache, fn *fingerprint.Identity, member []byte, compute func(context.Context) (T, error)) (T, bool, error) {
	var (
		zero T
		ran  bool
	)
	exec := func() (any, error) {
		ran = true
		var v T
		_, err := c.inst.Observe(ctx, observe.OpCompute, c.meta(fn), func(ctx context.Context) (observe.Outcome, error) {
			return observe.Outcome{}, c.computeLane(ctx, func(ctx context.Context) error {
				var err error
				v, err = compute(ctx)
				return err
			})
		})
		return v, err
	}

	var (
		res any
		err error
	)
	if c.group == nil {
		res, err = exec()
	} else {
		pair, perr := c.Pair(fn)
		if perr != nil {
			return zero, false, perr
		}
		res, err, _ = c.group.Do(pair.Values+"\x00"+string(member), exec)
	}
	if err != nil {
		return zero, ran, err
	}
	// A nil interface result boxes to a nil any.
	if res == nil {
		return zero, ran, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, ran, fmt.Errorf("cache: shared result for %s has type %T", fn.Name, res)
	}
	return v, ran, nil
}

func (c *Cache) computeLane(ctx context.Context, op func(context.Context) error) error {
	if c.bulkhead != nil {
		return c.bulkhead.Execute(ctx, op)
	}
	return c.exec.Compute(ctx, op)
}
