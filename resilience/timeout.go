package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timeout bounds how long a single store call may take.
type Timeout struct {
	d time.Duration
}

// NewTimeout creates a timeout wrapper. A non-positive d defaults to 1s.
func NewTimeout(d time.Duration) *Timeout {
	if d <= 0 {
		d = time.Second
	}
	return &Timeout{d: d}
}

// Execute runs op with a deadline. The go-redis client observes the context
// deadline itself, so op runs on the calling goroutine. A timed-out call
// returns ErrStoreTimeout wrapping the original error, which still counts
// as store unavailability.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()

	err := op(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v: %w", ErrStoreTimeout, t.d, err)
	}
	return err
}

// Duration returns the configured deadline.
func (t *Timeout) Duration() time.Duration {
	return t.d
}
