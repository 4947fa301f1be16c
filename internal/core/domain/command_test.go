package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		token   string
		want    Method
		wantErr bool
	}{
		{token: "SET", want: MethodSet},
		{token: "get", want: MethodGet},
		{token: "Delete", want: MethodDelete},
		{token: " GET ", want: MethodGet},
		{token: "DEL", wantErr: true},
		{token: "POST", wantErr: true},
		{token: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseMethod(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownMethod))
				assert.Empty(t, got, "unknown tokens must not default to a method")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCommand(t *testing.T) {
	obj := MustDecodeObject(`{"a":1}`)

	tests := []struct {
		name    string
		method  Method
		key     string
		value   Object
		wantErr error
	}{
		{name: "set", method: MethodSet, key: "k", value: obj},
		{name: "get", method: MethodGet, key: "k"},
		{name: "delete", method: MethodDelete, key: "k"},
		{name: "set without value", method: MethodSet, key: "k", wantErr: ErrMissingValue},
		{name: "get with value", method: MethodGet, key: "k", value: obj, wantErr: ErrMissingValue},
		{name: "empty key", method: MethodGet, key: "", wantErr: ErrEmptyKey},
		{name: "unknown method", method: Method("PATCH"), key: "k", wantErr: ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewCommand(tt.method, tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.method, cmd.Method)
			assert.Equal(t, tt.key, cmd.Key)
			assert.True(t, tt.value.Equal(cmd.Value))
		})
	}
}

func TestCommandConstructors(t *testing.T) {
	set, err := NewSetCommand("foo", MustDecodeObject(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, MethodSet, set.Method)

	get, err := NewGetCommand("foo")
	require.NoError(t, err)
	assert.Equal(t, MethodGet, get.Method)
	assert.True(t, get.Value.IsZero())

	del, err := NewDeleteCommand("foo")
	require.NoError(t, err)
	assert.Equal(t, MethodDelete, del.Method)
}
