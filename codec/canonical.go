package codec

import (
	"bytes"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// canonicalMsgpack rewrites a msgpack document so that map entries appear
// in ascending order of their encoded keys. Arrays keep their order and
// scalars are copied unchanged.
func canonicalMsgpack(data []byte) ([]byte, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	var buf bytes.Buffer
	if err := canonicalize(dec, msgpack.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type mapEntry struct {
	key, value []byte
}

func canonicalize(dec *msgpack.Decoder, enc *msgpack.Encoder) error {
	c, err := dec.PeekCode()
	if err != nil {
		return err
	}

	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return err
		}
		entries := make([]mapEntry, n)
		for i := range entries {
			if entries[i].key, err = canonicalItem(dec); err != nil {
				return err
			}
			if entries[i].value, err = canonicalItem(dec); err != nil {
				return err
			}
		}
		slices.SortFunc(entries, func(a, b mapEntry) int { return bytes.Compare(a.key, b.key) })

		if err := enc.EncodeMapLen(n); err != nil {
			return err
		}
		for _, e := range entries {
			if err := enc.Encode(msgpack.RawMessage(e.key)); err != nil {
				return err
			}
			if err := enc.Encode(msgpack.RawMessage(e.value)); err != nil {
				return err
			}
		}
		return nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(n); err != nil {
			return err
		}
		for range n {
			if err := canonicalize(dec, enc); err != nil {
				return err
			}
		}
		return nil

	default:
		raw, err := dec.DecodeRaw()
		if err != nil {
			return err
		}
		return enc.Encode(raw)
	}
}

func canonicalItem(dec *msgpack.Decoder) ([]byte, error) {
	var buf bytes.Buffer
	if err := canonicalize(dec, msgpack.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
