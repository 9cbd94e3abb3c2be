package resilience

import "errors"

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when the store circuit breaker is open.
	ErrCircuitOpen = errors.New("resilience: store circuit is open")

	// ErrRecomputeLimit is returned when the recompute bulkhead is at capacity
	// and the caller could not wait for a slot.
	ErrRecomputeLimit = errors.New("resilience: too many concurrent recomputations")

	// ErrStoreTimeout is returned when a store call exceeds its deadline.
	ErrStoreTimeout = errors.New("resilience: store call timed out")
)

// Bypassable reports whether err means the cache should be skipped and the
// function computed directly.
func Bypassable(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrStoreTimeout)
}
