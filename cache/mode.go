package cache

import "context"

// Mode selects which steps Memoize performs.
type Mode struct {
	// Read looks the call up in the cache.
	Read bool
	// Write stores a computed result.
	Write bool
	// Exec runs the function on a miss. Without it a miss is ErrCacheMiss.
	Exec bool
}

// DefaultMode reads, writes and executes.
var DefaultMode = Mode{Read: true, Write: true, Exec: true}

type modeKey struct{}

// WithMode returns a context carrying m.
func WithMode(ctx context.Context, m Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, m)
}

// ModeFrom returns the mode carried by ctx, or DefaultMode.
func ModeFrom(ctx context.Context) Mode {
	if m, ok := ctx.Value(modeKey{}).(Mode); ok {
		return m
	}
	return DefaultMode
}

// ReadOnly reads from the cache but never writes.
func ReadOnly(ctx context.Context) context.Context {
	m := ModeFrom(ctx)
	m.Read, m.Write = true, false
	return WithMode(ctx, m)
}

// WriteOnly always executes and stores the result, without reading first.
func WriteOnly(ctx context.Context) context.Context {
	m := ModeFrom(ctx)
	m.Read, m.Write = false, true
	return WithMode(ctx, m)
}

// DisableReadWrite executes as if there were no cache.
func DisableReadWrite(ctx context.Context) context.Context {
	m := ModeFrom(ctx)
	m.Read, m.Write = false, false
	return WithMode(ctx, m)
}
