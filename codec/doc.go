// Package codec provides the serializers used to turn function arguments
// and return values into bytes.
//
// A Codec is a small interface. The package ships a closed set of built-in
// codecs (json, msgpack, gob, yaml, proto) reachable through Lookup, and
// callers may pass their own implementation anywhere a Codec is accepted.
package codec
