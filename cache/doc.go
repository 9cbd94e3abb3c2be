// Package cache memoizes Go functions in Redis.
//
// A Cache binds a name, an eviction policy and a key naming variant to a
// Redis client. Memoize looks a call up by the fingerprint of its function
// identity and arguments, and on a miss runs the function and stores the
// encoded result:
//
//	c, err := cache.New("users", client,
//	    cache.WithPolicy(policy.LRU),
//	    cache.WithMaxSize(10_000),
//	    cache.WithTTL(30*time.Minute),
//	)
//
//	user, err := cache.Memoize(ctx, c, id, []any{userID}, nil,
//	    func(ctx context.Context) (User, error) { return db.LoadUser(ctx, userID) })
//
// Wrap and Wrap2 turn a function into a memoized function of the same
// shape, deriving the identity from the function value.
//
// Per-call behaviour is carried in the context: WithMode, ReadOnly,
// WriteOnly and DisableReadWrite select which of read, write and execute
// happen; WithStats attaches counters.
//
// When Redis is unreachable or the store circuit is open, Memoize computes
// the result directly and skips the cache.
package cache
