// Package policy enumerates the replacement policies and the rules each one
// applies on insert, on hit and on eviction.
package policy

import (
	"errors"
	"fmt"
)

// ErrUnknownPolicy indicates Parse was given an unknown tag.
var ErrUnknownPolicy = errors.New("policy: unknown policy")

// Kind is a replacement policy.
type Kind int

const (
	LRU Kind = iota
	LRUT
	FIFO
	FIFOT
	LFU
	MRU
	RR
)

// Kinds lists every policy in declaration order.
var Kinds = []Kind{LRU, LRUT, FIFO, FIFOT, LFU, MRU, RR}

// Score describes how a member's score is assigned.
type Score int

const (
	// ScoreNone leaves the score untouched (or there is none, for RR).
	ScoreNone Score = iota
	// ScoreNextRank assigns the current maximum score plus one, or 1 when
	// the Index is empty.
	ScoreNextRank
	// ScoreServerTime assigns the server clock in milliseconds.
	ScoreServerTime
	// ScoreZero assigns 0.
	ScoreZero
	// ScoreIncrement adds 1 to the existing score.
	ScoreIncrement
)

// End selects which members are evicted.
type End int

const (
	// EvictMin pops the lowest scores.
	EvictMin End = iota
	// EvictMax pops the highest scores.
	EvictMax
	// EvictRandom pops random members of a plain set.
	EvictRandom
)

// Rule is the complete behaviour of one policy.
type Rule struct {
	Tag    string
	Insert Score
	Hit    Score
	Evict  End
	// SortedIndex is false when the Index is a plain set.
	SortedIndex bool
}

var rules = map[Kind]Rule{
	LRU:   {Tag: "lru", Insert: ScoreNextRank, Hit: ScoreNextRank, Evict: EvictMin, SortedIndex: true},
	LRUT:  {Tag: "lru_t", Insert: ScoreServerTime, Hit: ScoreServerTime, Evict: EvictMin, SortedIndex: true},
	FIFO:  {Tag: "fifo", Insert: ScoreNextRank, Hit: ScoreNone, Evict: EvictMin, SortedIndex: true},
	FIFOT: {Tag: "fifo_t", Insert: ScoreServerTime, Hit: ScoreNone, Evict: EvictMin, SortedIndex: true},
	LFU:   {Tag: "lfu", Insert: ScoreZero, Hit: ScoreIncrement, Evict: EvictMin, SortedIndex: true},
	MRU:   {Tag: "mru", Insert: ScoreNextRank, Hit: ScoreNextRank, Evict: EvictMax, SortedIndex: true},
	RR:    {Tag: "rr", Insert: ScoreNone, Hit: ScoreNone, Evict: EvictRandom, SortedIndex: false},
}

// Rule returns the rule for k. It panics on an invalid Kind.
func (k Kind) Rule() Rule {
	r, ok := rules[k]
	if !ok {
		panic(fmt.Sprintf("policy: invalid kind %d", int(k)))
	}
	return r
}

// Valid reports whether k is a known policy.
func (k Kind) Valid() bool {
	_, ok := rules[k]
	return ok
}

// Tag returns the short name used in key names and passed to scripts.
func (k Kind) Tag() string {
	if r, ok := rules[k]; ok {
		return r.Tag
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) String() string { return k.Tag() }

// Parse returns the Kind for a tag such as "lru" or "fifo_t".
func Parse(tag string) (Kind, error) {
	for _, k := range Kinds {
		if rules[k].Tag == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, tag)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(k))
	}
	return []byte(k.Tag()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
