package cache

import (
	"context"

	"github.com/jonwraymond/funccache/fingerprint"
)

// Wrap returns a memoized version of fn. The identity is derived from the
// function value, so fn should be a named function or method value rather
// than a closure whose behaviour depends on captured state.
func Wrap[A, T any](c *Cache, fn func(context.Context, A) (T, error), opts ...CallOption) (func(context.Context, A) (T, error), error) {
	id, err := fingerprint.IdentityOf(fn)
	if err != nil {
		return nil, err
	}
	return WrapNamed(c, id, fn, opts...), nil
}

// WrapNamed is like Wrap with an explicit identity.
func WrapNamed[A, T any](c *Cache, id fingerprint.Identity, fn func(context.Context, A) (T, error), opts ...CallOption) func(context.Context, A) (T, error) {
	return func(ctx context.Context, a A) (T, error) {
		return Memoize(ctx, c, id, []any{a}, nil, func(ctx context.Context) (T, error) {
			return fn(ctx, a)
		}, opts...)
	}
}

// Wrap2 is Wrap for two-argument functions.
func Wrap2[A, B, T any](c *Cache, fn func(context.Context, A, B) (T, error), opts ...CallOption) (func(context.Context, A, B) (T, error), error) {
	id, err := fingerprint.IdentityOf(fn)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, a A, b B) (T, error) {
		return Memoize(ctx, c, id, []any{a, b}, nil, func(ctx context.Context) (T, error) {
			return fn(ctx, a, b)
		}, opts...)
	}, nil
}
