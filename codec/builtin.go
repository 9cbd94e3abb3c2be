package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// JSON encodes with encoding/json. Map keys are emitted in sorted order,
// which makes it suitable for fingerprinting.
type JSON struct{}

func (JSON) Name() string { return NameJSON }

func (JSON) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, unsupported(NameJSON, v, err)
	}
	return data, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Msgpack encodes with vmihailenco/msgpack. The output is canonical: the
// entries of every map, at any depth and of any key type, are ordered by
// their encoded key bytes, so equal maps always produce equal bytes.
type Msgpack struct{}

func (Msgpack) Name() string { return NameMsgpack }

func (Msgpack) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, unsupported(NameMsgpack, v, err)
	}
	out, err := canonicalMsgpack(data)
	if err != nil {
		return nil, fmt.Errorf("codec: msgpack canonical form: %w", err)
	}
	return out, nil
}

func (Msgpack) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Gob encodes with encoding/gob. Concrete types stored behind interfaces
// must be registered with gob.Register by the caller. Maps are written in
// iteration order, so Gob is usable for values but not for fingerprints.
type Gob struct{}

func (Gob) Name() string { return NameGob }

// Deterministic reports false.
func (Gob) Deterministic() bool { return false }

func (Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, unsupported(NameGob, v, err)
	}
	return buf.Bytes(), nil
}

func (Gob) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// YAML encodes with gopkg.in/yaml.v3.
type YAML struct{}

func (YAML) Name() string { return NameYAML }

func (YAML) Marshal(v any) (data []byte, err error) {
	// yaml.v3 panics on some unsupported kinds (channels, funcs).
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, unsupported(NameYAML, v, fmt.Errorf("%v", r))
		}
	}()
	data, err = yaml.Marshal(v)
	if err != nil {
		return nil, unsupported(NameYAML, v, err)
	}
	return data, nil
}

func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Proto encodes protobuf messages with deterministic marshaling.
// Values that are not proto.Message are rejected.
type Proto struct{}

func (Proto) Name() string { return NameProto }

func (Proto) Marshal(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, unsupported(NameProto, v, fmt.Errorf("not a proto.Message"))
	}
	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
	if err != nil {
		return nil, unsupported(NameProto, v, err)
	}
	return data, nil
}

func (Proto) Unmarshal(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: proto cannot decode into %T", ErrUnsupported, v)
	}
	return proto.Unmarshal(data, m)
}

var (
	_ Codec = JSON{}
	_ Codec = Msgpack{}
	_ Codec = Gob{}
	_ Codec = YAML{}
	_ Codec = Proto{}
)
