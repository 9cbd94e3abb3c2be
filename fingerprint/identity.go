package fingerprint

import (
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
)

// ErrNotFunc indicates IdentityOf was given something other than a function.
var ErrNotFunc = errors.New("fingerprint: value is not a function")

// Identity names a cached function.
//
// Name is the fully-qualified function name. Code is a version-sensitive
// payload: when it changes, every fingerprint for the function changes, so
// results computed by an older build are never served to a newer one.
type Identity struct {
	Name string
	Code []byte
}

// NewIdentity returns an identity with an explicit name and code payload.
func NewIdentity(name string, code []byte) Identity {
	return Identity{Name: name, Code: code}
}

// IdentityOf derives an identity from a Go function value.
//
// The name comes from the runtime symbol table. The code payload is the
// function's source file base name and line, plus the main module version
// and VCS revision when the binary carries build info.
func IdentityOf(fn any) (Identity, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Identity{}, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return Identity{}, fmt.Errorf("%w: no symbol for %T", ErrNotFunc, fn)
	}
	file, line := f.FileLine(f.Entry())

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d", filepath.Base(file), line)
	if rev := buildRevision(); rev != "" {
		b.WriteString("@")
		b.WriteString(rev)
	}

	return Identity{Name: f.Name(), Code: []byte(b.String())}, nil
}

// Checksum returns the unpadded base64 MD5 of the name and code payload.
// It distinguishes versions of the same function in per-function key names.
func (id Identity) Checksum() string {
	h := md5.New()
	h.Write([]byte(id.Name))
	h.Write(id.Code)
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}

// String returns the function name.
func (id Identity) String() string {
	return id.Name
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	rev := info.Main.Version
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			rev += "+" + s.Value
		}
	}
	return rev
}
