package keyslot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/funccache/fingerprint"
)

// DefaultPrefix is prepended to every derived key.
const DefaultPrefix = "func-cache:"

// Errors returned by Derive.
var (
	ErrEmptyName       = errors.New("keyslot: cache name is required")
	ErrEmptyTag        = errors.New("keyslot: policy tag is required")
	ErrMissingIdentity = errors.New("keyslot: per-function variant requires a function identity")
	ErrUnknownVariant  = errors.New("keyslot: unknown variant")
)

// Variant selects how key names are built.
type Variant int

const (
	// Shared keeps one pair for every function using the cache.
	Shared Variant = iota
	// PerFunction keeps one pair per function identity.
	PerFunction
	// SharedClustered is Shared with a hash tag over name and tag.
	SharedClustered
	// PerFunctionClustered is PerFunction with a hash tag over the checksum.
	PerFunctionClustered
)

// Suffix returns the string appended to the policy tag for this variant.
func (v Variant) Suffix() string {
	switch v {
	case PerFunction:
		return "-m"
	case SharedClustered:
		return "-c"
	case PerFunctionClustered:
		return "-cm"
	default:
		return ""
	}
}

// PerFunction reports whether each function identity owns its own pair.
func (v Variant) PerFunction() bool {
	return v == PerFunction || v == PerFunctionClustered
}

// Clustered reports whether derived keys carry a hash tag.
func (v Variant) Clustered() bool {
	return v == SharedClustered || v == PerFunctionClustered
}

func (v Variant) String() string {
	switch v {
	case Shared:
		return "shared"
	case PerFunction:
		return "per-function"
	case SharedClustered:
		return "shared-clustered"
	case PerFunctionClustered:
		return "per-function-clustered"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses the String form of a variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "shared", "":
		return Shared, nil
	case "per-function":
		return PerFunction, nil
	case "shared-clustered":
		return SharedClustered, nil
	case "per-function-clustered":
		return PerFunctionClustered, nil
	default:
		return Shared, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
}

// Pair holds the two keys of a cache instance.
type Pair struct {
	// Index is the sorted set (plain set for random replacement).
	Index string
	// Values is the hash mapping identifiers to serialized values.
	Values string
}

// Keys returns the pair as a slice in script KEYS order.
func (p Pair) Keys() []string {
	return []string{p.Index, p.Values}
}

// Derive builds the key pair for a cache instance.
//
// fn is ignored by the shared variants and required by the per-function
// ones. Braces in prefix, name and fn.Name are replaced for clustered
// variants so the only hash tag in the key is the one Derive inserts.
func Derive(prefix, name, tag string, variant Variant, fn *fingerprint.Identity) (Pair, error) {
	if name == "" {
		return Pair{}, ErrEmptyName
	}
	if tag == "" {
		return Pair{}, ErrEmptyTag
	}

	base, err := baseKey(prefix, name, tag, variant, fn)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Index: base + ":0", Values: base + ":1"}, nil
}

// Pattern returns a SCAN MATCH pattern covering every pair a cache instance
// may own. For shared variants it matches exactly the one pair.
func Pattern(prefix, name, tag string, variant Variant) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	if tag == "" {
		return "", ErrEmptyTag
	}
	tag += variant.Suffix()
	if variant.Clustered() {
		prefix, name = stripBraces(prefix), stripBraces(name)
	}
	prefix, name = escapeGlob(prefix), escapeGlob(name)

	switch variant {
	case Shared:
		return fmt.Sprintf("%s%s:%s:[01]", prefix, name, tag), nil
	case SharedClustered:
		return fmt.Sprintf("%s{%s:%s}:[01]", prefix, name, tag), nil
	case PerFunction, PerFunctionClustered:
		return fmt.Sprintf("%s%s:%s:*", prefix, name, tag), nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownVariant, int(variant))
	}
}

func baseKey(prefix, name, tag string, variant Variant, fn *fingerprint.Identity) (string, error) {
	tag += variant.Suffix()

	switch variant {
	case Shared:
		return prefix + name + ":" + tag, nil

	case SharedClustered:
		return stripBraces(prefix) + "{" + stripBraces(name) + ":" + tag + "}", nil

	case PerFunction:
		if fn == nil || fn.Name == "" {
			return "", ErrMissingIdentity
		}
		return fmt.Sprintf("%s%s:%s:%s#%s", prefix, name, tag, fn.Name, fn.Checksum()), nil

	case PerFunctionClustered:
		if fn == nil || fn.Name == "" {
			return "", ErrMissingIdentity
		}
		return fmt.Sprintf("%s%s:%s:%s#{%s}", stripBraces(prefix), stripBraces(name), tag, stripBraces(fn.Name), fn.Checksum()), nil

	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownVariant, int(variant))
	}
}

var braceReplacer = strings.NewReplacer("{", "(", "}", ")")

func stripBraces(s string) string {
	return braceReplacer.Replace(s)
}

var globReplacer = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
