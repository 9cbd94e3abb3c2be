package store

import (
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
)

// Errors returned by the store.
var (
	// ErrNilClient indicates New was called without a client.
	ErrNilClient = errors.New("store: client is nil")

	// ErrInvalidConfig indicates Config.Validate failed.
	ErrInvalidConfig = errors.New("store: invalid config")

	// ErrEmptyMember indicates an empty identifier was passed to Get or Put.
	ErrEmptyMember = errors.New("store: member is empty")
)

// unavailablePrefixes are server replies that mean the node cannot serve
// the request right now.
var unavailablePrefixes = []string{"LOADING", "CLUSTERDOWN", "TRYAGAIN", "MASTERDOWN", "BUSY"}

// IsUnavailable reports whether err means Redis could not be reached or
// could not serve the request. Such errors are transient; a caller may skip
// the cache and compute directly.
func IsUnavailable(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	if errors.Is(err, redis.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		msg := redisErr.Error()
		for _, p := range unavailablePrefixes {
			if strings.HasPrefix(msg, p) {
				return true
			}
		}
	}
	return false
}
