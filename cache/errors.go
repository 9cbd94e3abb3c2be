package cache

import (
	"errors"
	"strings"

	"github.com/jonwraymond/funccache/resilience"
	"github.com/jonwraymond/funccache/store"
)

// MaxNameLength is the maximum allowed length for a cache name.
const MaxNameLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCache     = errors.New("cache: cache is nil")
	ErrNilCompute   = errors.New("cache: compute function is nil")
	ErrInvalidName  = errors.New("cache: name is invalid")
	ErrNameTooLong  = errors.New("cache: name exceeds max length")
	ErrInvalidValue = errors.New("cache: invalid option value")

	// ErrCacheMiss is returned by Memoize when the lookup missed and the
	// context's Mode does not allow executing the function.
	ErrCacheMiss = errors.New("cache: miss and execution disabled")
)

// ValidateName checks if name can be used as a cache name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.ContainsAny(name, "\n\r") {
		return ErrInvalidName
	}
	return nil
}

// bypassable reports whether a store error should make Memoize skip the
// cache rather than fail.
func bypassable(err error) bool {
	return resilience.Bypassable(err) || store.IsUnavailable(err)
}
