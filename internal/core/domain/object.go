package domain

import (
	"bytes"
	stdjson "encoding/json"

	"github.com/goccy/go-json"
)

// jsonWhitespace is the insignificant whitespace of RFC 8259. Other
// Unicode spaces such as U+00A0 are not JSON whitespace.
const jsonWhitespace = " \t\r\n"

// Object is a JSON object held as compact JSON text.
//
// The zero Object is empty and is not a valid value. Objects are only
// produced by DecodeObject, so a non-zero Object is always an object,
// never a scalar or an array.
type Object struct {
	raw []byte
}

// DecodeObject validates data as JSON-object text and returns it compacted.
//
// The grammar check uses encoding/json because goccy's Valid accepts
// numbers with leading zeros such as {"a":01}. The leading token is
// inspected only after the whole document is known to be valid.
func DecodeObject(data []byte) (Object, error) {
	trimmed := bytes.Trim(data, jsonWhitespace)
	if len(trimmed) == 0 {
		return Object{}, ErrInvalidJSON.WithDetails("empty value")
	}
	if !stdjson.Valid(trimmed) {
		return Object{}, ErrInvalidJSON
	}

	if kind := jsonKind(trimmed[0]); kind != "object" {
		return Object{}, ErrNotObject.WithDetails("got " + kind)
	}

	var buf bytes.Buffer
	buf.Grow(len(trimmed))
	if err := json.Compact(&buf, trimmed); err != nil {
		return Object{}, ErrInvalidJSON.WithCause(err)
	}
	return Object{raw: buf.Bytes()}, nil
}

// MustDecodeObject is like DecodeObject but panics on error.
// Intended for tests and static values.
func MustDecodeObject(s string) Object {
	o, err := DecodeObject([]byte(s))
	if err != nil {
		panic(err)
	}
	return o
}

// jsonKind names the JSON value kind starting with b.
func jsonKind(b byte) string {
	switch b {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

// IsZero reports whether o holds no value.
func (o Object) IsZero() bool {
	return len(o.raw) == 0
}

// Bytes returns a copy of the compact JSON text.
func (o Object) Bytes() []byte {
	if o.raw == nil {
		return nil
	}
	return bytes.Clone(o.raw)
}

// String returns the compact JSON text.
func (o Object) String() string {
	return string(o.raw)
}

// Len returns the size of the compact JSON text in bytes.
func (o Object) Len() int {
	return len(o.raw)
}

// Clone returns an Object that shares no memory with o.
func (o Object) Clone() Object {
	return Object{raw: o.Bytes()}
}

// Equal reports whether both objects hold the same compact text.
func (o Object) Equal(other Object) bool {
	return bytes.Equal(o.raw, other.raw)
}

// MarshalJSON implements json.Marshaler so an Object embeds verbatim.
func (o Object) MarshalJSON() ([]byte, error) {
	if o.IsZero() {
		return []byte("null"), nil
	}
	return o.Bytes(), nil
}
