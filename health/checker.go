package health

import (
	"context"
	"time"
)

// Status is the state of one check, ordered from best to worst.
type Status int

const (
	// StatusHealthy means the cache reads and writes through Redis.
	StatusHealthy Status = iota
	// StatusDegraded means calls still succeed but may bypass the cache or
	// run slowly.
	StatusDegraded
	// StatusUnhealthy means the store cannot serve requests.
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Details is what a check observed about the store. Fields a checker does
// not look at stay zero and are left out of the JSON form.
type Details struct {
	// PingLatency is the round trip of PING.
	PingLatency time.Duration `json:"-"`

	// Unavailable is set when Redis answered with a transient refusal
	// (LOADING, CLUSTERDOWN and the like) or could not be reached.
	Unavailable bool `json:"unavailable,omitempty"`

	// Scripts maps script name to the SHA1 loaded into the server.
	Scripts map[string]string `json:"scripts,omitempty"`

	// Circuit is the breaker state: closed, open or half-open.
	Circuit  string `json:"circuit,omitempty"`
	Failures int    `json:"failures,omitempty"`
	Rejected int64  `json:"rejected,omitempty"`
}

// Result is the outcome of one check.
type Result struct {
	Status  Status
	Message string
	Details Details
	Error   error

	// Duration and Timestamp are filled in by the Aggregator.
	Duration  time.Duration
	Timestamp time.Time
}

// Healthy returns a healthy result carrying d.
func Healthy(message string, d Details) Result {
	return Result{Status: StatusHealthy, Message: message, Details: d, Timestamp: time.Now()}
}

// Degraded returns a degraded result carrying d.
func Degraded(message string, d Details) Result {
	return Result{Status: StatusDegraded, Message: message, Details: d, Timestamp: time.Now()}
}

// Unhealthy returns an unhealthy result for err.
func Unhealthy(message string, err error, d Details) Result {
	return Result{Status: StatusUnhealthy, Message: message, Details: d, Error: err, Timestamp: time.Now()}
}

// Checker inspects one part of the cache's backend.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Check must honor ctx cancellation/deadlines.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}
