// Package metric provides Prometheus metrics for jsonkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: registry, command/connection instruments
//   - collector.go: store size collector
//   - server.go: dedicated listener for /metrics and health probes
//
// Metrics include:
//
//   - jsonkv_commands_total{protocol,method,outcome}
//   - jsonkv_command_duration_seconds{protocol,method}
//   - jsonkv_connections_active{protocol}
//   - jsonkv_store_keys
//
// All Registry methods are safe on a nil receiver, which disables
// recording. Adapters built without metrics pass nil.
package metric
