package resilience

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newBreaker(maxFailures int) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  maxFailures,
		ResetTimeout: 10 * time.Second,
		Now:          clock.Now,
	})
	return cb, clock
}

func fail(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if cb.config.MaxFailures != 5 {
		t.Errorf("MaxFailures = %d, want 5", cb.config.MaxFailures)
	}
	if cb.config.ResetTimeout != 10*time.Second {
		t.Errorf("ResetTimeout = %v, want 10s", cb.config.ResetTimeout)
	}
	if cb.config.HalfOpenMaxRequests != 1 {
		t.Errorf("HalfOpenMaxRequests = %d, want 1", cb.config.HalfOpenMaxRequests)
	}
}

func TestCircuitBreaker_OpensOnUnavailability(t *testing.T) {
	cb, _ := newBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail(io.EOF)); !errors.Is(err, io.EOF) {
			t.Fatalf("Execute() error = %v, want EOF", err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() when open = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("op must not run while the circuit is open")
	}
	if got := cb.Metrics().Rejected; got != 1 {
		t.Errorf("Rejected = %d, want 1", got)
	}
}

func TestCircuitBreaker_IgnoresApplicationErrors(t *testing.T) {
	cb, _ := newBreaker(1)
	codecErr := errors.New("codec: cannot decode")

	for i := 0; i < 5; i++ {
		_ = cb.Execute(context.Background(), fail(codecErr))
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb, _ := newBreaker(2)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail(io.EOF))
	_ = cb.Execute(ctx, fail(nil))
	_ = cb.Execute(ctx, fail(io.EOF))
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	tests := []struct {
		name  string
		trial error
		want  State
	}{
		{"trial call succeeds", nil, StateClosed},
		{"trial call fails", io.EOF, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newBreaker(1)
			ctx := context.Background()
			_ = cb.Execute(ctx, fail(io.EOF))

			clock.Advance(10 * time.Second)
			if cb.State() != StateHalfOpen {
				t.Fatalf("State() = %v, want half-open", cb.State())
			}

			_ = cb.Execute(ctx, fail(tt.trial))
			if cb.State() != tt.want {
				t.Errorf("State() = %v, want %v", cb.State(), tt.want)
			}
		})
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newBreaker(1)
	ctx := context.Background()
	_ = cb.Execute(ctx, fail(io.EOF))
	clock.Advance(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = cb.Execute(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Execute(ctx, fail(nil)); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second trial call error = %v, want ErrCircuitOpen", err)
	}
	close(release)
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	clock := &fakeClock{now: time.Unix(0, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Second,
		Now:          clock.Now,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), fail(io.EOF))
	clock.Advance(time.Second)
	_ = cb.Execute(context.Background(), fail(nil))
	cb.Reset()

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(9):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
