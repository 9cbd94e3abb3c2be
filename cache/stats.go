package cache

import (
	"context"
	"sync/atomic"
)

// Stats counts what Memoize did for calls made with a context returned by
// WithStats. The counters are safe for concurrent use.
type Stats struct {
	Count atomic.Int64 // calls
	Read  atomic.Int64 // lookups attempted
	Write atomic.Int64 // results stored
	Exec  atomic.Int64 // function executions
	Hit   atomic.Int64
	Miss  atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Count, Read, Write, Exec, Hit, Miss int64
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Count: s.Count.Load(),
		Read:  s.Read.Load(),
		Write: s.Write.Load(),
		Exec:  s.Exec.Load(),
		Hit:   s.Hit.Load(),
		Miss:  s.Miss.Load(),
	}
}

type statsKey struct{}

// WithStats returns a context that collects into a new Stats, and the Stats.
func WithStats(ctx context.Context) (context.Context, *Stats) {
	s := &Stats{}
	return context.WithValue(ctx, statsKey{}, s), s
}

// StatsFrom returns the Stats attached to ctx, or nil.
func StatsFrom(ctx context.Context) *Stats {
	s, _ := ctx.Value(statsKey{}).(*Stats)
	return s
}

type counter int

const (
	countCall counter = iota
	countRead
	countWrite
	countExec
	countHit
	countMiss
)

func (s *Stats) incr(c counter) {
	if s == nil {
		return
	}
	switch c {
	case countCall:
		s.Count.Add(1)
	case countRead:
		s.Read.Add(1)
	case countWrite:
		s.Write.Add(1)
	case countExec:
		s.Exec.Add(1)
	case countHit:
		s.Hit.Add(1)
	case countMiss:
		s.Miss.Add(1)
	}
}
