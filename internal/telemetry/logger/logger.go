package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Output formats. "console" is accepted as an alias of FormatText.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Format is FormatJSON or FormatText.
	Format string
	// Output defaults to os.Stderr.
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatJSON,
		Output: os.Stderr,
	}
}

// level is shared by every logger New builds, so SetLevel applies
// process-wide.
var level slog.LevelVar

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

func lookupLevel(name string) (slog.Level, bool) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// ValidLevel reports whether name is a supported level.
func ValidLevel(name string) bool {
	_, ok := lookupLevel(name)
	return ok
}

// SetLevel changes the level of every logger. Unknown names mean info.
func SetLevel(name string) {
	l, ok := lookupLevel(name)
	if !ok {
		l = slog.LevelInfo
	}
	level.Set(l)
}

// GetLevel returns the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

// New creates a logger and sets the process-wide level to cfg.Level.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return &ctxLogger{
		sl:  slog.New(newHandler(cfg.Format, out, cfg.AddSource)),
		ctx: context.Background(),
	}, nil
}

func newHandler(format string, out io.Writer, addSource bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     &level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}
	switch strings.ToLower(format) {
	case FormatText, "console":
		return slog.NewTextHandler(out, opts)
	default:
		return slog.NewJSONHandler(out, opts)
	}
}

// ctxLogger is a *slog.Logger bound to the context its records carry.
type ctxLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

func (c *ctxLogger) Debug(msg string, args ...any) { c.sl.Log(c.ctx, slog.LevelDebug, msg, args...) }
func (c *ctxLogger) Info(msg string, args ...any)  { c.sl.Log(c.ctx, slog.LevelInfo, msg, args...) }
func (c *ctxLogger) Warn(msg string, args ...any)  { c.sl.Log(c.ctx, slog.LevelWarn, msg, args...) }
func (c *ctxLogger) Error(msg string, args ...any) { c.sl.Log(c.ctx, slog.LevelError, msg, args...) }

func (c *ctxLogger) With(args ...any) Logger {
	return &ctxLogger{sl: c.sl.With(args...), ctx: c.ctx}
}

func (c *ctxLogger) WithContext(ctx context.Context) Logger {
	return &ctxLogger{sl: c.sl, ctx: ctx}
}

var std atomic.Pointer[ctxLogger]

func init() {
	l, _ := New(DefaultConfig())
	std.Store(l.(*ctxLogger))
}

// SetDefault replaces the package logger and installs it as the slog
// default, so components holding a *slog.Logger share its sink.
// Foreign Logger implementations are ignored.
func SetDefault(l Logger) {
	if cl, ok := l.(*ctxLogger); ok {
		std.Store(cl)
		slog.SetDefault(cl.sl)
	}
}

// Default returns the package logger.
func Default() Logger {
	return std.Load()
}

// Slog returns the *slog.Logger behind l, or slog.Default() for foreign
// implementations.
func Slog(l Logger) *slog.Logger {
	if cl, ok := l.(*ctxLogger); ok {
		return cl.sl
	}
	return slog.Default()
}

func Debug(msg string, args ...any) { std.Load().Debug(msg, args...) }
func Info(msg string, args ...any)  { std.Load().Info(msg, args...) }
func Warn(msg string, args ...any)  { std.Load().Warn(msg, args...) }
func Error(msg string, args ...any) { std.Load().Error(msg, args...) }
