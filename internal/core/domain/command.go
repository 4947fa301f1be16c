package domain

import "strings"

// Method identifies one of the three store operations.
type Method string

// Supported methods.
const (
	MethodSet    Method = "SET"
	MethodGet    Method = "GET"
	MethodDelete Method = "DELETE"
)

// String returns the canonical method name.
func (m Method) String() string {
	return string(m)
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodSet, MethodGet, MethodDelete:
		return true
	default:
		return false
	}
}

// ParseMethod parses a canonical method token (case-insensitive).
//
// An unrecognized token yields ErrUnknownMethod; it never defaults to
// another method.
func ParseMethod(token string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(token)))
	if !m.Valid() {
		return "", ErrUnknownMethod.WithDetails(token)
	}
	return m, nil
}

// Command is a protocol-neutral request against the store.
//
// Value is set iff Method is MethodSet.
type Command struct {
	Method Method
	Key    string
	Value  Object
}

// NewCommand validates and builds a Command.
func NewCommand(method Method, key string, value Object) (*Command, error) {
	if !method.Valid() {
		return nil, ErrUnknownMethod.WithDetails(string(method))
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	if (method == MethodSet) == value.IsZero() {
		return nil, ErrMissingValue.WithDetails(string(method))
	}
	return &Command{
		Method: method,
		Key:    key,
		Value:  value,
	}, nil
}

// NewSetCommand builds a SET command.
func NewSetCommand(key string, value Object) (*Command, error) {
	return NewCommand(MethodSet, key, value)
}

// NewGetCommand builds a GET command.
func NewGetCommand(key string) (*Command, error) {
	return NewCommand(MethodGet, key, Object{})
}

// NewDeleteCommand builds a DELETE command.
func NewDeleteCommand(key string) (*Command, error) {
	return NewCommand(MethodDelete, key, Object{})
}

// Result is the outcome of applying a Command.
//
// Found reports whether the key was present before the command ran; it is
// meaningful for GET and DELETE. Value holds the stored object on a GET hit.
type Result struct {
	Method Method
	Key    string
	Value  Object
	Found  bool
}
