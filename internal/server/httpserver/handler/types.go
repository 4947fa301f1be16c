package handler

import "time"

// Response is the standard API response envelope.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// SetResponse is the data of a successful POST /{key}.
type SetResponse struct {
	Key string `json:"key"`
}

// DeleteResponse is the data of DELETE /{key}.
type DeleteResponse struct {
	Key     string `json:"key"`
	Existed bool   `json:"existed"`
}

// HealthResponse is the data of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Keys      int    `json:"keys"`
	Time      string `json:"time"`
}

// ReadyResponse is the data of GET /ready.
type ReadyResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}
