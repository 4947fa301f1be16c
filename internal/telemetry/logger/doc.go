// Package logger provides structured logging for jsonkv.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, handler construction, dynamic level
//   - context.go: request/connection ID propagation through context
//   - redact.go: masking of attributes that may carry stored data
//
// Stored values must never reach the log sink; redaction is the last line
// for attributes such as "value" or "body" that slip through.
package logger
