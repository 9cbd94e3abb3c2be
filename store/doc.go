// Package store implements the atomic Get/Put protocol against Redis.
//
// Every cache instance owns two keys (see package keyslot): an Index that
// orders identifiers for eviction, and a Value Map holding the serialized
// values. Get and Put each run as a single Lua script so that lookup,
// hit-refresh, eviction, insertion and expiry happen in one atomic step.
// Both scripts dispatch on the policy tag, so one pair of scripts serves
// every policy.
//
// A member present in one structure but missing from the other (a crash or
// field-expiry artifact) is repaired by the next script touching it: Get
// deletes the stray half and reports a miss, Put overwrites it.
package store
