package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// PrettyOptions configures a PrettyHandler.
type PrettyOptions struct {
	Level slog.Leveler
	// Color enables ANSI escapes around the time, level and attributes.
	Color bool
}

// PrettyHandler writes one line per record:
//
//	[2006-01-02 15:04:05] INFO  message key=value
type PrettyHandler struct {
	opts   PrettyOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []slog.Attr
}

// NewPrettyHandler returns a handler writing to w. A nil opts logs at info
// level without color.
func NewPrettyHandler(w io.Writer, opts *PrettyOptions) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: new(sync.Mutex)}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	buf = h.paint(buf, ansiGray, func(b []byte) []byte {
		b = append(b, '[')
		b = r.Time.AppendFormat(b, time.DateTime)
		return append(b, ']')
	})
	buf = append(buf, ' ')
	buf = h.paint(buf, levelColor(r.Level)+ansiBold, func(b []byte) []byte {
		return fmt.Appendf(b, "%-5s", r.Level.String())
	})
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	n := len(h.attrs) + r.NumAttrs()
	if n > 0 {
		buf = append(buf, ' ')
		buf = h.paint(buf, ansiCyan, func(b []byte) []byte {
			first := true
			emit := func(a slog.Attr, prefix string) {
				if !first {
					b = append(b, ' ')
				}
				first = false
				b = appendAttr(b, a, prefix)
			}
			for _, a := range h.attrs {
				emit(a, "")
			}
			r.Attrs(func(a slog.Attr) bool {
				emit(a, h.prefix)
				return true
			})
			return b
		})
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *PrettyHandler) paint(buf []byte, color string, fn func([]byte) []byte) []byte {
	if !h.opts.Color {
		return fn(buf)
	}
	buf = append(buf, color...)
	buf = fn(buf)
	return append(buf, ansiReset...)
}

// WithAttrs qualifies the new attributes with the current group.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	if h.prefix == "" {
		clone.prefix = name
	} else {
		clone.prefix = h.prefix + "." + name
	}
	return &clone
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiBlue
	}
	return ansiGray
}

func appendAttr(buf []byte, a slog.Attr, prefix string) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		for i, ga := range group {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = appendAttr(buf, ga, key)
		}
		return buf
	}

	buf = append(buf, key...)
	buf = append(buf, '=')
	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if needsQuoting(s) {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	case slog.KindTime:
		return a.Value.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindDuration:
		return append(buf, a.Value.Duration().String()...)
	}
	return fmt.Append(buf, a.Value.Any())
}

func needsQuoting(s string) bool {
	return strings.ContainsAny(s, " \t\n\r\"=")
}
