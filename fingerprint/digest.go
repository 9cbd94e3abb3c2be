package fingerprint

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ErrUnknownDigest indicates an unregistered digest name.
var ErrUnknownDigest = errors.New("fingerprint: unknown digest")

// Digest names.
const (
	DigestMD5    = "md5"
	DigestSHA1   = "sha1"
	DigestSHA256 = "sha256"
	DigestSHA512 = "sha512"
	DigestXXHash = "xxhash"
)

var digests = map[string]func() hash.Hash{
	DigestMD5:    md5.New,
	DigestSHA1:   sha1.New,
	DigestSHA256: sha256.New,
	DigestSHA512: sha512.New,
	DigestXXHash: func() hash.Hash { return xxhash.New() },
}

// Digests returns the sorted names of the supported digests.
func Digests() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupDigest(name string) (func() hash.Hash, error) {
	fn, ok := digests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
	return fn, nil
}

// Encoding controls how the raw digest bytes are presented.
type Encoding int

const (
	// Raw returns the digest bytes unchanged.
	Raw Encoding = iota
	// Hex returns lowercase hexadecimal text.
	Hex
	// Base64 returns unpadded standard base64 text.
	Base64
)

func (e Encoding) String() string {
	switch e {
	case Raw:
		return "raw"
	case Hex:
		return "hex"
	case Base64:
		return "base64"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding parses "raw", "hex" or "base64".
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "raw", "":
		return Raw, nil
	case "hex":
		return Hex, nil
	case "base64":
		return Base64, nil
	default:
		return Raw, fmt.Errorf("fingerprint: unknown encoding %q", s)
	}
}

func (e Encoding) encode(sum []byte) []byte {
	switch e {
	case Hex:
		out := make([]byte, hex.EncodedLen(len(sum)))
		hex.Encode(out, sum)
		return out
	case Base64:
		out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
		base64.RawStdEncoding.Encode(out, sum)
		return out
	default:
		return sum
	}
}
