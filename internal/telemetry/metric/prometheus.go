package metric

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "jsonkv"

// Command outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeMiss        = "miss"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	commandsTotal     *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
	connectionsActive *prometheus.GaugeVec
}

// NewRegistry creates a registry with the runtime collectors and the
// application instruments registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by protocol, method and outcome.",
		}, []string{"protocol", "method", "outcome"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent applying a command, by protocol and method.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"protocol", "method"}),
		connectionsActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "connections_active",
			Help:      "Currently open client connections, by protocol.",
		}, []string{"protocol"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.commandsTotal,
		r.commandDuration,
		r.connectionsActive,
	)

	return r
}

// RegisterStoreSize exposes the number of stored keys as jsonkv_store_keys.
func (r *Registry) RegisterStoreSize(size func() int) error {
	if r == nil {
		return nil
	}
	if err := r.reg.Register(newStoreCollector(size)); err != nil {
		return fmt.Errorf("register store collector: %w", err)
	}
	return nil
}

// SetBuildInfo publishes jsonkv_build_info{version,commit,go_version} = 1.
func (r *Registry) SetBuildInfo(version, commit, goVersion string) error {
	if r == nil {
		return nil
	}
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   Namespace,
		Name:        "build_info",
		Help:        "Build information of the running binary.",
		ConstLabels: prometheus.Labels{"version": version, "commit": commit, "go_version": goVersion},
	})
	g.Set(1)
	if err := r.reg.Register(g); err != nil {
		return fmt.Errorf("register build info: %w", err)
	}
	return nil
}

// ObserveCommand records one handled command.
func (r *Registry) ObserveCommand(protocol, method, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.commandsTotal.WithLabelValues(protocol, method, outcome).Inc()
	r.commandDuration.WithLabelValues(protocol, method).Observe(d.Seconds())
}

// ConnOpened increments the active connection gauge for protocol.
func (r *Registry) ConnOpened(protocol string) {
	if r == nil {
		return
	}
	r.connectionsActive.WithLabelValues(protocol).Inc()
}

// ConnClosed decrements the active connection gauge for protocol.
func (r *Registry) ConnClosed(protocol string) {
	if r == nil {
		return
	}
	r.connectionsActive.WithLabelValues(protocol).Dec()
}

// Gatherer returns the underlying gatherer (used by tests and the handler).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
