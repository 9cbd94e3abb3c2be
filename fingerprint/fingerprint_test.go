package fingerprint

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/funccache/codec"
)

var testID = NewIdentity("example.com/pkg.Add", []byte("add.go:10"))

func TestSum_Deterministic(t *testing.T) {
	f := MustNew()

	a, err := f.Sum(testID, []any{1, "x"}, map[string]any{"b": 2, "a": 1, "c": []int{3}})
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		b, err := f.Sum(testID, []any{1, "x"}, map[string]any{"c": []int{3}, "a": 1, "b": 2})
		if err != nil {
			t.Fatalf("Sum() error = %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("Sum() not deterministic: %x vs %x", a, b)
		}
	}
}

func TestSum_Distinguishes(t *testing.T) {
	f := MustNew()
	base, _ := f.Sum(testID, []any{1, 2}, nil)

	tests := []struct {
		name   string
		id     Identity
		args   []any
		kwargs map[string]any
	}{
		{"different args", testID, []any{2, 1}, nil},
		{"arg moved to kwargs", testID, []any{1}, map[string]any{"y": 2}},
		{"different name", NewIdentity("example.com/pkg.Sub", testID.Code), []any{1, 2}, nil},
		{"different code", NewIdentity(testID.Name, []byte("add.go:11")), []any{1, 2}, nil},
		{"concatenation", testID, []any{12}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Sum(tt.id, tt.args, tt.kwargs)
			if err != nil {
				t.Fatalf("Sum() error = %v", err)
			}
			if bytes.Equal(got, base) {
				t.Errorf("Sum() collided with base fingerprint %x", base)
			}
		})
	}
}

func TestSum_Encodings(t *testing.T) {
	raw := MustNew()
	sum, err := raw.Sum(testID, []any{"v"}, nil)
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if len(sum) != 16 {
		t.Fatalf("md5 raw length = %d, want 16", len(sum))
	}

	hx, _ := MustNew(WithEncoding(Hex)).Sum(testID, []any{"v"}, nil)
	if string(hx) != hex.EncodeToString(sum) {
		t.Errorf("hex = %s, want %s", hx, hex.EncodeToString(sum))
	}

	b64, _ := MustNew(WithEncoding(Base64)).Sum(testID, []any{"v"}, nil)
	if string(b64) != base64.RawStdEncoding.EncodeToString(sum) {
		t.Errorf("base64 = %s", b64)
	}
	if strings.HasSuffix(string(b64), "=") {
		t.Errorf("base64 output must be unpadded: %s", b64)
	}
}

func TestSum_Digests(t *testing.T) {
	sizes := map[string]int{
		DigestMD5:    16,
		DigestSHA1:   20,
		DigestSHA256: 32,
		DigestSHA512: 64,
		DigestXXHash: 8,
	}
	for _, name := range Digests() {
		t.Run(name, func(t *testing.T) {
			f, err := New(WithDigest(name))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			sum, err := f.Sum(testID, nil, nil)
			if err != nil {
				t.Fatalf("Sum() error = %v", err)
			}
			if len(sum) != sizes[name] {
				t.Errorf("len = %d, want %d", len(sum), sizes[name])
			}
		})
	}

	if _, err := New(WithDigest("crc32")); !errors.Is(err, ErrUnknownDigest) {
		t.Errorf("New(crc32) error = %v, want ErrUnknownDigest", err)
	}
}

func TestSum_NotSerializable(t *testing.T) {
	f := MustNew()

	_, err := f.Sum(testID, []any{1, make(chan int)}, nil)
	if !errors.Is(err, ErrNotSerializable) {
		t.Fatalf("Sum() error = %v, want ErrNotSerializable", err)
	}
	var nse *NotSerializableError
	if !errors.As(err, &nse) || nse.Arg != "args[1]" {
		t.Errorf("NotSerializableError.Arg = %v, want args[1]", nse)
	}
	if !errors.Is(err, codec.ErrUnsupported) {
		t.Errorf("Sum() error should wrap codec.ErrUnsupported")
	}

	_, err = f.Sum(testID, nil, map[string]any{"cb": func() {}})
	if !errors.As(err, &nse) || nse.Arg != "cb" {
		t.Errorf("kwarg error = %v, want Arg=cb", err)
	}
}

func TestSum_CodecAffectsDigest(t *testing.T) {
	j, _ := MustNew().Sum(testID, []any{map[string]int{"a": 1}}, nil)
	m, _ := MustNew(WithCodec(codec.Msgpack{})).Sum(testID, []any{map[string]int{"a": 1}}, nil)
	if bytes.Equal(j, m) {
		t.Error("json and msgpack fingerprints should differ")
	}
}

func TestWithCodec_RejectsNondeterministic(t *testing.T) {
	_, err := New(WithCodec(codec.Gob{}))
	if !errors.Is(err, ErrNondeterministicCodec) {
		t.Fatalf("New(WithCodec(Gob)) error = %v, want ErrNondeterministicCodec", err)
	}
	for _, c := range []codec.Codec{codec.JSON{}, codec.Msgpack{}, codec.YAML{}, codec.Proto{}} {
		if _, err := New(WithCodec(c)); err != nil {
			t.Errorf("New(WithCodec(%s)) error = %v", c.Name(), err)
		}
	}
}

func addInts(a, b int) int { return a + b }

func TestIdentityOf(t *testing.T) {
	id, err := IdentityOf(addInts)
	if err != nil {
		t.Fatalf("IdentityOf() error = %v", err)
	}
	if !strings.HasSuffix(id.Name, "fingerprint.addInts") {
		t.Errorf("Name = %q", id.Name)
	}
	if !strings.HasPrefix(string(id.Code), "fingerprint_test.go:") {
		t.Errorf("Code = %q", id.Code)
	}

	again, _ := IdentityOf(addInts)
	if id.Checksum() != again.Checksum() {
		t.Error("Checksum() should be stable")
	}

	if _, err := IdentityOf(42); !errors.Is(err, ErrNotFunc) {
		t.Errorf("IdentityOf(42) error = %v, want ErrNotFunc", err)
	}
	var nilFn func()
	if _, err := IdentityOf(nilFn); !errors.Is(err, ErrNotFunc) {
		t.Errorf("IdentityOf(nil func) error = %v, want ErrNotFunc", err)
	}
}

func TestChecksum(t *testing.T) {
	c := testID.Checksum()
	if len(c) != 22 {
		t.Errorf("len(Checksum()) = %d, want 22", len(c))
	}
	other := NewIdentity(testID.Name, []byte("add.go:99")).Checksum()
	if c == other {
		t.Error("Checksum() should change with code payload")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    Encoding
		wantErr bool
	}{
		{"", Raw, false},
		{"raw", Raw, false},
		{"hex", Hex, false},
		{"base64", Base64, false},
		{"b32", Raw, true},
	}
	for _, tt := range tests {
		got, err := ParseEncoding(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseEncoding(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && got.String() != tt.in && tt.in != "" {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestSum_MsgpackMapOrder(t *testing.T) {
	f := MustNew(WithCodec(codec.Msgpack{}))
	forward := map[string]int{}
	reverse := map[string]int{}
	keys := "abcdefghijklmnop"
	for i := range len(keys) {
		forward[keys[i:i+1]] = i
		j := len(keys) - 1 - i
		reverse[keys[j:j+1]] = j
	}

	want, err := f.Sum(testID, []any{forward}, map[string]any{"opts": forward})
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	for i := 0; i < 20; i++ {
		got, err := f.Sum(testID, []any{reverse}, map[string]any{"opts": reverse})
		if err != nil {
			t.Fatalf("Sum() error = %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("equal map arguments fingerprint differently: %x vs %x", got, want)
		}
	}
}
