package httpserver

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// protocolName labels HTTP connection metrics.
const protocolName = "http"

// Config holds HTTP server timeouts.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
}

// New creates a new HTTP server for handler.
func New(cfg Config, handler http.Handler, metrics *metric.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
			ConnState:         connStateHook(metrics),
		},
	}
}

// connStateHook tracks open connections in the active connection gauge.
func connStateHook(metrics *metric.Registry) func(net.Conn, http.ConnState) {
	if metrics == nil {
		return nil
	}
	return func(_ net.Conn, state http.ConnState) {
		switch state {
		case http.StateNew:
			metrics.ConnOpened(protocolName)
		case http.StateClosed, http.StateHijacked:
			metrics.ConnClosed(protocolName)
		}
	}
}

// Serve accepts HTTP connections on ln. After Shutdown it returns
// http.ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown stops accepting and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
