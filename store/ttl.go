package store

import (
	"fmt"
	"time"
)

// TTLMode selects how the structure TTL is maintained.
type TTLMode int

const (
	// Sliding re-arms the TTL of both keys on every Get hit and every Put.
	Sliding TTLMode = iota
	// Fixed arms the TTL once, when a key is first created.
	Fixed
)

func (m TTLMode) String() string {
	switch m {
	case Sliding:
		return "sliding"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("TTLMode(%d)", int(m))
	}
}

// ParseTTLMode parses "sliding" or "fixed".
func ParseTTLMode(s string) (TTLMode, error) {
	switch s {
	case "sliding", "":
		return Sliding, nil
	case "fixed":
		return Fixed, nil
	default:
		return Sliding, fmt.Errorf("store: unknown ttl mode %q", s)
	}
}

// TTL is the expiry applied to the Index and Value Map keys.
// A zero Duration means the keys never expire.
type TTL struct {
	Duration time.Duration
	Mode     TTLMode
}

// Validate checks the TTL.
func (t TTL) Validate() error {
	if t.Duration < 0 {
		return fmt.Errorf("%w: negative ttl %s", ErrInvalidConfig, t.Duration)
	}
	if t.Mode != Sliding && t.Mode != Fixed {
		return fmt.Errorf("%w: unknown ttl mode %d", ErrInvalidConfig, int(t.Mode))
	}
	return nil
}

func (t TTL) slidingArg() string {
	if t.Mode == Sliding {
		return "1"
	}
	return "0"
}

// millis converts d to whole milliseconds, rounding a positive sub-millisecond
// duration up so it is not mistaken for "no expiry".
func millis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms == 0 {
		return 1
	}
	return ms
}
