package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// formatterHandler adapts a LogFormatter to slog.Handler, so
// TextFormatter/JSONFormatter/ColorFormatter back a real *slog.Logger
// instead of only being exercised directly by formatter_test.go.
type formatterHandler struct {
	mu          *sync.Mutex
	out         io.Writer
	formatter   LogFormatter
	level       slog.Level
	attrs       []slog.Attr
	groupPrefix string
}

func newFormatterHandler(out io.Writer, formatter LogFormatter, level slog.Level) *formatterHandler {
	return &formatterHandler{mu: &sync.Mutex{}, out: out, formatter: formatter, level: level}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[h.groupPrefix+a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.groupPrefix+a.Key] = a.Value.Any()
		return true
	})

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     slogToLogLevel(r.Level),
		Message:   r.Message,
		Fields:    fields,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.out, h.formatter.Format(entry))
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &formatterHandler{mu: h.mu, out: h.out, formatter: h.formatter, level: h.level, attrs: merged, groupPrefix: h.groupPrefix}
}

func (h *formatterHandler) WithGroup(name string) slog.Handler {
	return &formatterHandler{mu: h.mu, out: h.out, formatter: h.formatter, level: h.level, attrs: h.attrs, groupPrefix: h.groupPrefix + name + "."}
}

// slogToLogLevel converts a slog.Level to the nearest LogLevel. slog has no
// level matching FATAL, so that direction is never produced here.
func slogToLogLevel(l slog.Level) LogLevel {
	switch {
	case l < slog.LevelInfo:
		return DEBUG
	case l < slog.LevelWarn:
		return INFO
	case l < slog.LevelError:
		return WARN
	default:
		return ERROR
	}
}

// formatterForName resolves a --logformat flag value to a LogFormatter.
// Unrecognised names fall back to JSONFormatter.
func formatterForName(name string) LogFormatter {
	switch name {
	case "text":
		return &TextFormatter{}
	case "color":
		return &ColorFormatter{}
	default:
		return &JSONFormatter{}
	}
}
