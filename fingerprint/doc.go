// Package fingerprint turns a function identity and its arguments into a
// compact, deterministic digest used as the member name of a cache entry.
//
// The digest folds in the function name, a version-sensitive code payload,
// every positional argument and every named argument (in sorted key order).
// Each component is serialized with a codec.Codec and length-prefixed before
// hashing, so adjacent values cannot run together.
//
// A Fingerprinter performs no I/O and is safe for concurrent use.
package fingerprint
