package metric

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Server serves /metrics and any extra probe routes on a dedicated listener,
// so the data-plane HTTP namespace stays free for keys.
type Server struct {
	httpServer *http.Server
	ln         net.Listener
}

// Listen binds addr and prepares a metrics server.
// routes maps extra paths (e.g. "/health") to handlers.
func Listen(addr string, r *Registry, routes map[string]http.Handler) (*Server, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	for path, h := range routes {
		mux.Handle(path, h)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", addr, err)
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve blocks serving requests until Shutdown is called.
func (s *Server) Serve() error {
	if err := s.httpServer.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
