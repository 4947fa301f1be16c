package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/telemetry/logger"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// protocolName labels HTTP command metrics.
const protocolName = "http"

// Handler serves the key-value endpoints.
type Handler struct {
	exec         service.Executor
	maxBodyBytes int64
	metrics      *metric.Registry
	logger       *slog.Logger
}

// New creates a Handler. maxBodyBytes <= 0 means 1 MiB; metrics may be nil.
func New(exec service.Executor, maxBodyBytes int64, metrics *metric.Registry, log *slog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		exec:         exec,
		maxBodyBytes: maxBodyBytes,
		metrics:      metrics,
		logger:       log,
	}
}

// writeJSON writes a success envelope.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := logger.RequestIDFromContext(r.Context())
	body, err := json.Marshal(NewResponse(requestID, data))
	if err != nil {
		WriteError(w, r, domain.ErrInternal.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes an error envelope. The status comes from the error
// code; anything that is not a DomainError is reported as KV-SYS-5000
// without its message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternal
	}
	status := domain.StatusCode(de)

	var details any
	if de.Details != "" {
		details = de.Details
	}
	requestID := logger.RequestIDFromContext(r.Context())
	body, _ := json.Marshal(NewErrorResponse(requestID, de.Code, de.Message, details))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// UnknownRoute answers any path that does not name exactly one key.
func (h *Handler) UnknownRoute(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, domain.ErrUnknownRoute.WithDetails(r.Method+" "+r.URL.EscapedPath()))
}

// MethodNotAllowed answers a verb other than POST, GET or DELETE on /{key}.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, DELETE")
	WriteError(w, r, domain.ErrMethodNotAllowed.WithDetails(r.Method))
}
