package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/jsonkv-go/internal/server/ratelimit"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Executor runs store commands.
	Executor service.Executor

	// Logger for access and error logs.
	Logger *slog.Logger

	// Metrics records command outcomes; nil disables.
	Metrics *metric.Registry

	// MaxBodyBytes caps POST bodies.
	MaxBodyBytes int64

	// RateLimit is requests per second per client IP; 0 disables.
	RateLimit float64
}

// NewRouter creates the key-value router wrapped in the middleware chain
// Recover -> RequestID -> RateLimit -> Audit.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := handler.New(cfg.Executor, cfg.MaxBodyBytes, cfg.Metrics, log)

	// Keys are matched on the escaped path so "%2F" can appear in a key,
	// and paths are not cleaned so "/a/../b" is not silently rewritten.
	r := mux.NewRouter().UseEncodedPath().SkipClean(true)
	r.HandleFunc("/{key}", h.Set).Methods(http.MethodPost)
	r.HandleFunc("/{key}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{key}", h.Delete).Methods(http.MethodDelete)
	r.NotFoundHandler = http.HandlerFunc(h.UnknownRoute)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.MethodNotAllowed)

	return Chain(r,
		Recover(log),
		RequestID(),
		RateLimit(ratelimit.New(cfg.RateLimit)),
		Audit(log),
	)
}
