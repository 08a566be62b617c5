// Package logger is the structured logging layer shared by the tmf tools.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging surface the packages depend on. It is satisfied by a
// thin wrapper around slog so tests can swap in any handler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithGroup(name string) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New wraps handler in a Logger.
func New(handler slog.Handler) Logger {
	return &slogLogger{l: slog.New(handler)}
}

// Default logs text at info level to stderr.
func Default() Logger {
	return Text(os.Stderr, slog.LevelInfo)
}

// Discard drops every record.
func Discard() Logger {
	return New(slog.DiscardHandler)
}

// Text logs logfmt style records to w.
func Text(w io.Writer, level slog.Level) Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// JSON logs one JSON object per record, with source locations.
func JSON(w io.Writer, level slog.Level) Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
}

// Pretty logs human readable records. Colors are used only when w is a
// terminal.
func Pretty(w io.Writer, level slog.Level) Logger {
	return New(NewPrettyHandler(w, &PrettyOptions{
		Level: level,
		Color: IsTerminal(w),
	}))
}

// Options selects a logger from command line or config values.
type Options struct {
	Format string // pretty, json or text
	Level  string
	Writer io.Writer
}

// Setup builds the logger described by opts. An empty format means pretty.
func Setup(opts Options) (Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(opts.Format) {
	case "", "pretty":
		return Pretty(w, level), nil
	case "json":
		return JSON(w, level), nil
	case "text":
		return Text(w, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q (want pretty, json or text)", opts.Format)
}

type loggerKey struct{}

// FromContext returns the logger stored in ctx, or Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Default()
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

func (s *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

// ParseLevel maps a level name to a slog.Level. The empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}
