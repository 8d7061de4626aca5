package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

const stampLayout = "2006-01-02 15:04:05"

// textHandler renders records as "[timestamp] [LEVEL] message key=value ...",
// with ANSI colors when the destination is a terminal. slog's own text
// handler quotes aggressively and lacks color, which is why this exists.
type textHandler struct {
	opts  *slog.HandlerOptions
	out   io.Writer
	mu    *sync.Mutex
	bound []slog.Attr
	color bool
}

func newTextHandler(out io.Writer, opts *slog.HandlerOptions, color bool) *textHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &textHandler{
		opts:  opts,
		out:   out,
		mu:    new(sync.Mutex),
		color: color,
	}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

// Handle assembles the whole line in a local buffer first; the mutex only
// guards the single Write, so lines from concurrent goroutines never
// interleave.
func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	label, color := severity(r.Level)

	buf := make([]byte, 0, 256)
	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, stampLayout)
	buf = append(buf, "] ["...)
	buf = append(buf, h.paint(label, color)...)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, a := range h.bound {
		buf = h.appendAttr(buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

// severity maps a slog level to its display label and color.
func severity(level slog.Level) (string, string) {
	switch {
	case level < slog.LevelInfo:
		return "DEBUG", ansiGray
	case level < slog.LevelWarn:
		return "INFO", ansiGreen
	case level < slog.LevelError:
		return "WARN", ansiYellow
	}
	return "ERROR", ansiRed
}

// paint wraps s in the given color when color output is on.
func (h *textHandler) paint(s, color string) string {
	if !h.color {
		return s
	}
	return color + s + ansiReset
}

func (h *textHandler) appendAttr(buf []byte, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, h.paint(a.Key, ansiCyan)...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return append(buf, v.String()...)
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		return fmt.Appendf(buf, "%v", v.Any())
	}
}

// WithAttrs pre-binds attrs. The mutex is shared with the parent so all
// derived handlers still serialize their writes.
func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &textHandler{
		opts:  h.opts,
		out:   h.out,
		mu:    h.mu,
		bound: append(slices.Clone(h.bound), attrs...),
		color: h.color,
	}
}

// WithGroup is accepted but ignored; nothing here logs grouped attrs.
func (h *textHandler) WithGroup(string) slog.Handler {
	return h
}
