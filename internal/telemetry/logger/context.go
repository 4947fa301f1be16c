package logger

import "context"

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
	connIDCtxKey
)

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// FromContext returns the logger stored in ctx, or Default().
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerCtxKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID tags ctx with an HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext returns the HTTP request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDCtxKey)
}

// WithConnID tags ctx with a RESP connection ID.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, connIDCtxKey, id)
}

// ConnIDFromContext returns the RESP connection ID, or "".
func ConnIDFromContext(ctx context.Context) string {
	return stringValue(ctx, connIDCtxKey)
}

func stringValue(ctx context.Context, k ctxKey) string {
	s, _ := ctx.Value(k).(string)
	return s
}

// L returns the context logger with request_id and conn_id attached
// when ctx carries them.
func L(ctx context.Context) Logger {
	var args []any
	if id := RequestIDFromContext(ctx); id != "" {
		args = append(args, "request_id", id)
	}
	if id := ConnIDFromContext(ctx); id != "" {
		args = append(args, "conn_id", id)
	}
	l := FromContext(ctx)
	if len(args) == 0 {
		return l
	}
	return l.With(args...)
}
