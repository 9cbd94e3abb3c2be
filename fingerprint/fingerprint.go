package fingerprint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"sort"

	"github.com/jonwraymond/funccache/codec"
)

// ErrNotSerializable indicates an argument could not be encoded.
var ErrNotSerializable = errors.New("fingerprint: argument is not serializable")

// ErrNondeterministicCodec indicates a codec that may encode equal inputs
// to different bytes.
var ErrNondeterministicCodec = errors.New("fingerprint: codec is not deterministic")

// NotSerializableError reports which argument failed to encode.
type NotSerializableError struct {
	// Arg is "args[i]" for positional arguments or the name of a named one.
	Arg string
	Err error
}

func (e *NotSerializableError) Error() string {
	return fmt.Sprintf("fingerprint: argument %s is not serializable: %v", e.Arg, e.Err)
}

// Unwrap exposes both ErrNotSerializable and the codec error.
func (e *NotSerializableError) Unwrap() []error {
	return []error{ErrNotSerializable, e.Err}
}

// Fingerprinter computes argument digests.
//
// Contract:
// - Concurrency: safe for concurrent use; holds no mutable state.
// - Determinism: equal identities and equal arguments give equal output,
//   regardless of map iteration order in kwargs.
// - Errors: returns *NotSerializableError when the codec rejects an argument.
type Fingerprinter struct {
	codec    codec.Codec
	digest   string
	newHash  func() hash.Hash
	encoding Encoding
}

// Option configures a Fingerprinter.
type Option func(*Fingerprinter) error

// WithCodec sets the codec used to serialize arguments. Codecs that do not
// produce identical bytes for equal inputs are rejected with
// ErrNondeterministicCodec.
func WithCodec(c codec.Codec) Option {
	return func(f *Fingerprinter) error {
		if c == nil {
			return errors.New("fingerprint: codec is nil")
		}
		if !codec.Deterministic(c) {
			return fmt.Errorf("%w: %s", ErrNondeterministicCodec, c.Name())
		}
		f.codec = c
		return nil
	}
}

// WithDigest selects the hash function by name.
func WithDigest(name string) Option {
	return func(f *Fingerprinter) error {
		fn, err := lookupDigest(name)
		if err != nil {
			return err
		}
		f.digest = name
		f.newHash = fn
		return nil
	}
}

// WithEncoding selects how the digest bytes are presented.
func WithEncoding(e Encoding) Option {
	return func(f *Fingerprinter) error {
		if e < Raw || e > Base64 {
			return fmt.Errorf("fingerprint: unknown encoding %d", int(e))
		}
		f.encoding = e
		return nil
	}
}

// New creates a Fingerprinter. Defaults: JSON codec, MD5 digest, raw bytes.
func New(opts ...Option) (*Fingerprinter, error) {
	f := &Fingerprinter{
		codec:    codec.Default,
		digest:   DigestMD5,
		newHash:  digests[DigestMD5],
		encoding: Raw,
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustNew is like New but panics on an invalid option.
func MustNew(opts ...Option) *Fingerprinter {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Digest returns the configured digest name.
func (f *Fingerprinter) Digest() string { return f.digest }

// Encoding returns the configured output encoding.
func (f *Fingerprinter) Encoding() Encoding { return f.encoding }

// Codec returns the configured argument codec.
func (f *Fingerprinter) Codec() codec.Codec { return f.codec }

// Sum fingerprints one invocation of the function identified by id.
func (f *Fingerprinter) Sum(id Identity, args []any, kwargs map[string]any) ([]byte, error) {
	h := f.newHash()
	writeFrame(h, []byte(id.Name))
	writeFrame(h, id.Code)

	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(args)))
	h.Write(count[:])
	for i, arg := range args {
		data, err := f.codec.Marshal(arg)
		if err != nil {
			return nil, &NotSerializableError{Arg: fmt.Sprintf("args[%d]", i), Err: err}
		}
		writeFrame(h, data)
	}

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	binary.BigEndian.PutUint64(count[:], uint64(len(keys)))
	h.Write(count[:])
	for _, k := range keys {
		data, err := f.codec.Marshal(kwargs[k])
		if err != nil {
			return nil, &NotSerializableError{Arg: k, Err: err}
		}
		writeFrame(h, []byte(k))
		writeFrame(h, data)
	}

	return f.encoding.encode(h.Sum(nil)), nil
}

func writeFrame(h hash.Hash, data []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(data)))
	h.Write(n[:])
	h.Write(data)
}
