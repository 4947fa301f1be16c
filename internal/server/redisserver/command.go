package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yndnr/jsonkv-go/internal/core/domain"
	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/server/ratelimit"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

// commandMethods maps RESP command names onto store methods.
var commandMethods = map[string]domain.Method{
	"SET": domain.MethodSet,
	"GET": domain.MethodGet,
	"DEL": domain.MethodDelete,
}

// CommandHandler translates RESP requests into store commands.
type CommandHandler struct {
	exec    service.Executor
	limiter *ratelimit.Limiter
	metrics *metric.Registry
	logger  *slog.Logger
}

// NewCommandHandler creates a new CommandHandler. limiter and metrics
// may be nil.
func NewCommandHandler(exec service.Executor, limiter *ratelimit.Limiter, metrics *metric.Registry, logger *slog.Logger) *CommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandHandler{
		exec:    exec,
		limiter: limiter,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle writes the reply for one request to conn's buffer. It reports
// whether the client asked to close the connection.
func (h *CommandHandler) Handle(ctx context.Context, conn *Conn, args [][]byte) (quit bool) {
	name := normalizeCommandName(args[0])

	switch name {
	case "PING":
		h.handlePing(conn, args)
		return false
	case "QUIT":
		_ = conn.w.WriteSimpleString("OK")
		return true
	}

	method, ok := commandMethods[name]
	if !ok {
		_ = replyError(conn.w, formatError(domain.ErrUnknownMethod.WithDetails(string(args[0]))))
		h.metrics.ObserveCommand(protocolName, "UNKNOWN", metric.OutcomeClientError, 0)
		return false
	}

	if !h.limiter.Allow(conn.remoteIP()) {
		_ = replyError(conn.w, formatError(domain.ErrRateLimited))
		h.metrics.ObserveCommand(protocolName, method.String(), metric.OutcomeClientError, 0)
		return false
	}

	start := time.Now()
	outcome := h.execute(ctx, conn, name, method, args[1:])
	h.metrics.ObserveCommand(protocolName, method.String(), outcome, time.Since(start))
	return false
}

func (h *CommandHandler) handlePing(conn *Conn, args [][]byte) {
	switch len(args) {
	case 1:
		_ = conn.w.WriteSimpleString("PONG")
	case 2:
		_ = replyBulk(conn.w, args[1])
	default:
		_ = replyError(conn.w, formatError(domain.ErrWrongArity.WithDetails("ping")))
	}
}

// execute runs one store command and writes its reply. It returns the
// metrics outcome.
func (h *CommandHandler) execute(ctx context.Context, conn *Conn, name string, method domain.Method, args [][]byte) string {
	cmd, err := parseCommand(name, method, args)
	if err != nil {
		_ = replyError(conn.w, formatError(err))
		return metric.OutcomeClientError
	}

	res, err := h.exec.Execute(ctx, cmd)
	if err != nil {
		_ = replyError(conn.w, formatError(err))
		if domain.IsClientError(err) {
			return metric.OutcomeClientError
		}
		h.logger.Error("command failed", "method", method.String(), "key", cmd.Key, "error", err)
		return metric.OutcomeServerError
	}

	switch method {
	case domain.MethodSet:
		_ = conn.w.WriteSimpleString("OK")
	case domain.MethodGet:
		if !res.Found {
			_ = conn.w.WriteNull()
			return metric.OutcomeMiss
		}
		_ = conn.w.WriteBytes(res.Value.Bytes())
	case domain.MethodDelete:
		if !res.Found {
			_ = conn.w.WriteInteger(0)
			return metric.OutcomeMiss
		}
		_ = conn.w.WriteInteger(1)
	}
	return metric.OutcomeOK
}

// parseCommand checks arity and decodes the SET value. It never touches
// the store.
func parseCommand(name string, method domain.Method, args [][]byte) (*domain.Command, error) {
	want := 1
	if method == domain.MethodSet {
		want = 2
	}
	if len(args) != want {
		return nil, domain.ErrWrongArity.WithDetails(strings.ToLower(name))
	}

	key := string(args[0])
	if method != domain.MethodSet {
		return domain.NewCommand(method, key, domain.Object{})
	}

	value, err := domain.DecodeObject(args[1])
	if err != nil {
		return nil, err
	}
	return domain.NewSetCommand(key, value)
}

// formatError renders err as a RESP error message.
func formatError(err error) string {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return "ERR internal error"
	}
	switch de.Code {
	case domain.ErrUnknownMethod.Code:
		return "ERR unknown command '" + de.Details + "'"
	case domain.ErrWrongArity.Code:
		return "ERR wrong number of arguments for '" + de.Details + "' command"
	}
	return "ERR " + de.Message
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
