package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("KV-TEST-1000", "test message"),
			expected: "[KV-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("KV-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[KV-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("KV-TEST-1000", "message 1")
	err2 := NewDomainError("KV-TEST-1000", "message 2")
	err3 := NewDomainError("KV-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors with same code should match")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("DomainError should not match regular error")
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("KV-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	if original.Cause != nil {
		t.Error("WithCause should not modify the original")
	}
	if errors.Unwrap(withCause) != cause {
		t.Error("Unwrap should return the cause")
	}
	if withCause.Code != original.Code {
		t.Errorf("Code = %s, want %s", withCause.Code, original.Code)
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("KV-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify the original")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Message != original.Message {
		t.Errorf("Message = %q, want %q", withDetails.Message, original.Message)
	}
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", ErrUnknownMethod.WithDetails("PUT"))

	tests := []struct {
		name string
		err  error
		code string
		want bool
	}{
		{"matching code", ErrNotObject, "KV-VAL-4002", true},
		{"any code", ErrNotObject, "", true},
		{"other code", ErrNotObject, "KV-VAL-4001", false},
		{"regular error", fmt.Errorf("regular error"), "", false},
		{"wrapped", wrapped, "KV-CMD-4001", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDomainError(tt.err, tt.code); got != tt.want {
				t.Errorf("IsDomainError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrKeyNotFound, "KV-KEY-4040"},
		{fmt.Errorf("x: %w", ErrWrongArity), "KV-CMD-4002"},
		{fmt.Errorf("regular error"), ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := GetErrorCode(tt.err); got != tt.want {
			t.Errorf("GetErrorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err  *DomainError
		code string
	}{
		{ErrUnknownMethod, "KV-CMD-4001"},
		{ErrWrongArity, "KV-CMD-4002"},
		{ErrEmptyKey, "KV-CMD-4003"},
		{ErrMissingValue, "KV-CMD-4004"},
		{ErrInvalidJSON, "KV-VAL-4001"},
		{ErrNotObject, "KV-VAL-4002"},
		{ErrKeyNotFound, "KV-KEY-4040"},
		{ErrUnknownRoute, "KV-REQ-4000"},
		{ErrMethodNotAllowed, "KV-REQ-4050"},
		{ErrBodyTooLarge, "KV-REQ-4130"},
		{ErrRateLimited, "KV-RATE-4290"},
		{ErrInternal, "KV-SYS-5000"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrUnknownMethod, 400},
		{ErrInvalidJSON.WithDetails("x"), 400},
		{ErrKeyNotFound, 404},
		{ErrMethodNotAllowed, 405},
		{ErrBodyTooLarge, 413},
		{ErrRateLimited, 429},
		{ErrInternal, 500},
		{fmt.Errorf("wrapped: %w", ErrNotObject), 400},
		{errors.New("plain"), 500},
		{NewDomainError("BAD", "x"), 500},
		{NewDomainError("KV-X-abcd", "x"), 500},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	if !IsClientError(ErrEmptyKey) {
		t.Error("ErrEmptyKey should be a client error")
	}
	if IsClientError(ErrInternal) {
		t.Error("ErrInternal should not be a client error")
	}
	if IsClientError(errors.New("boom")) {
		t.Error("plain errors should not be client errors")
	}
}
