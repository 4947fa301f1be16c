// Package dispatcher binds the single server address and hands the
// listener to the front end selected by the server mode.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"

	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/server/config"
	"github.com/yndnr/jsonkv-go/internal/server/httpserver"
	"github.com/yndnr/jsonkv-go/internal/server/redisserver"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// ErrAddrInUse reports that the server address is already bound.
var ErrAddrInUse = errors.New("address already in use")

// Frontend is a protocol adapter serving connections from a listener.
type Frontend interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// Listen binds addr. It is called exactly once, before the store exists,
// so a failure leaves nothing to clean up.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen %s: %w", addr, ErrAddrInUse)
		}
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// NewFrontend builds the adapter for mode.
func NewFrontend(mode config.Mode, cfg *config.ServerConfig, exec service.Executor, metrics *metric.Registry, log *slog.Logger) Frontend {
	srv := cfg.Server
	if mode == config.ModeRESP {
		return redisserver.New(&redisserver.Config{
			ReadTimeout:  srv.ReadTimeout,
			WriteTimeout: srv.WriteTimeout,
			IdleTimeout:  srv.IdleTimeout,
			RateLimit:    srv.RateLimit,
			Limits:       redisserver.DefaultLimits(),
		}, exec, metrics, log)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Executor:     exec,
		Logger:       log,
		Metrics:      metrics,
		MaxBodyBytes: srv.MaxBodyBytes,
		RateLimit:    srv.RateLimit,
	})
	return httpserver.New(httpserver.Config{
		ReadTimeout:  srv.ReadTimeout,
		WriteTimeout: srv.WriteTimeout,
		IdleTimeout:  srv.IdleTimeout,
	}, router, metrics, log)
}

// Dispatcher owns the bound listener and the active front end.
type Dispatcher struct {
	mode     config.Mode
	ln       net.Listener
	frontend Frontend
	logger   *slog.Logger

	serving atomic.Bool
	closing atomic.Bool
}

// New creates a Dispatcher serving ln with frontend.
func New(mode config.Mode, ln net.Listener, frontend Frontend, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		mode:     mode,
		ln:       ln,
		frontend: frontend,
		logger:   log,
	}
}

// Mode returns the mode fixed at construction.
func (d *Dispatcher) Mode() config.Mode {
	return d.mode
}

// Addr returns the bound address.
func (d *Dispatcher) Addr() net.Addr {
	return d.ln.Addr()
}

// Serve blocks until the front end stops. It returns nil after Shutdown.
func (d *Dispatcher) Serve() error {
	d.logger.Info("serving", "mode", d.mode.String(), "addr", d.ln.Addr().String())

	d.serving.Store(true)
	err := d.frontend.Serve(d.ln)
	d.serving.Store(false)

	if d.closing.Load() || errors.Is(err, http.ErrServerClosed) || errors.Is(err, redisserver.ErrServerClosed) {
		return nil
	}
	return err
}

// Ready reports whether connections are being served.
func (d *Dispatcher) Ready() bool {
	return d.serving.Load() && !d.closing.Load()
}

// Shutdown stops the front end, which closes the listener and drains
// in-flight requests until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.closing.Store(true)
	d.logger.Info("shutting down front end", "mode", d.mode.String())
	err := d.frontend.Shutdown(ctx)
	// Serve may never have run; make sure the port is released.
	if cerr := d.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}
