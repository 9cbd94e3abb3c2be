package codec

import (
	"errors"
	"fmt"
	"sort"
)

// Codec serializes values to bytes and back.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Determinism: Marshal must produce identical bytes for equal inputs when
//   the codec is used for fingerprinting.
// - Errors: Marshal returns an error wrapping ErrUnsupported when the value
//   cannot be represented.
type Codec interface {
	// Name returns the registry name of the codec.
	Name() string

	// Marshal encodes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into the value pointed to by v.
	Unmarshal(data []byte, v any) error
}

// Errors returned by codecs and the registry.
var (
	// ErrUnknownCodec indicates Lookup was called with an unregistered name.
	ErrUnknownCodec = errors.New("codec: unknown codec")

	// ErrUnsupported indicates the value cannot be encoded by the codec.
	ErrUnsupported = errors.New("codec: unsupported value")
)

// Built-in codec names.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameGob     = "gob"
	NameYAML    = "yaml"
	NameProto   = "proto"
)

var builtins = map[string]Codec{
	NameJSON:    JSON{},
	NameMsgpack: Msgpack{},
	NameGob:     Gob{},
	NameYAML:    YAML{},
	NameProto:   Proto{},
}

// Default is the codec used when none is configured.
var Default Codec = JSON{}

// Lookup returns the built-in codec registered under name.
// The set of built-ins is fixed; custom codecs are passed directly.
func Lookup(name string) (Codec, error) {
	c, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Names returns the sorted names of the built-in codecs.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deterministic reports whether c produces identical bytes for equal
// inputs, maps included. A codec opts out by implementing
// Deterministic() bool; codecs without the method are assumed to comply.
func Deterministic(c Codec) bool {
	if d, ok := c.(interface{ Deterministic() bool }); ok {
		return d.Deterministic()
	}
	return true
}

func unsupported(name string, v any, err error) error {
	return fmt.Errorf("%w: %s cannot encode %T: %v", ErrUnsupported, name, v, err)
}
