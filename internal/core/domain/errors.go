package domain

import (
	"errors"
	"strconv"
)

// DomainError represents a request-scoped error with a structured error code.
//
// Codes follow the form KV-<AREA>-<NNNN>. The first three digits of NNNN
// are the HTTP status the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "KV-CMD-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

func (e *DomainError) Error() string {
	msg := "[" + e.Code + "] " + e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any *DomainError with the same code, so errors.Is works
// against the catalogue values below after WithDetails or WithCause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WithDetails returns a copy of e carrying details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// StatusCode returns the HTTP status encoded in err's code, or 500 for
// errors that are not DomainErrors or carry a malformed code.
func StatusCode(err error) int {
	code := GetErrorCode(err)
	if len(code) < 4 {
		return 500
	}
	n, convErr := strconv.Atoi(code[len(code)-4 : len(code)-1])
	if convErr != nil || n < 400 || n > 599 {
		return 500
	}
	return n
}

// IsClientError reports whether err is caused by the request rather
// than the server.
func IsClientError(err error) bool {
	s := StatusCode(err)
	return s >= 400 && s < 500
}

// Error catalogue. Areas: CMD command shape, VAL stored value, KEY key
// lookup, REQ transport request, RATE throttling, SYS server faults.
var (
	ErrUnknownMethod = NewDomainError("KV-CMD-4001", "unknown method")
	ErrWrongArity    = NewDomainError("KV-CMD-4002", "wrong number of arguments")
	ErrEmptyKey      = NewDomainError("KV-CMD-4003", "key must not be empty")
	// ErrMissingValue covers SET without a value and GET/DELETE with one.
	ErrMissingValue = NewDomainError("KV-CMD-4004", "value is required for SET and not accepted otherwise")

	ErrInvalidJSON = NewDomainError("KV-VAL-4001", "invalid JSON value")
	ErrNotObject   = NewDomainError("KV-VAL-4002", "value must be a JSON object")

	// ErrKeyNotFound is only surfaced by the HTTP adapter. The store
	// reports absence through Result.Found.
	ErrKeyNotFound = NewDomainError("KV-KEY-4040", "key not found")

	ErrUnknownRoute     = NewDomainError("KV-REQ-4000", "unrecognized route")
	ErrMethodNotAllowed = NewDomainError("KV-REQ-4050", "method not allowed")
	ErrBodyTooLarge     = NewDomainError("KV-REQ-4130", "request body too large")
	ErrRateLimited      = NewDomainError("KV-RATE-4290", "rate limit exceeded")

	ErrInternal = NewDomainError("KV-SYS-5000", "internal server error")
)
