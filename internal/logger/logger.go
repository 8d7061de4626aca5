// Package logger is the process-wide structured logging facade. It sits on
// top of log/slog and adds what the daemon needs around it: runtime level
// and format switching, color when the destination is a terminal, and
// request-scoped fields carried through context.Context.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the logger's own severity scale, ordered from most to least
// verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// parseLevel resolves a level name case-insensitively against levelNames.
func parseLevel(name string) (Level, bool) {
	want := strings.ToUpper(name)
	for level, n := range levelNames {
		if n == want {
			return level, true
		}
	}
	return 0, false
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

const (
	formatText = "text"
	formatJSON = "json"
)

// normalizeFormat lowercases a format name and reports whether it is one the
// logger knows.
func normalizeFormat(format string) (string, bool) {
	f := strings.ToLower(format)
	return f, f == formatText || f == formatJSON
}

// Config selects the initial level, format and destination.
type Config struct {
	// Level is one of DEBUG, INFO, WARN or ERROR.
	Level string
	// Format is either "text" or "json".
	Format string
	// Output names the destination: "stdout", "stderr", or a file path.
	Output string
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value

	mu       sync.RWMutex
	slogger  *slog.Logger
	output   io.Writer = os.Stdout
	useColor bool      = true
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store(formatText)

	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	reconfigure()
}

// enabled reports whether messages at level l pass the current threshold.
func enabled(l Level) bool {
	return l >= Level(currentLevel.Load())
}

// reconfigure swaps in a handler built from the current level, format and
// destination. Callers hold no locks.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	level := new(slog.LevelVar)
	level.Set(Level(currentLevel.Load()).slogLevel())
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if format, _ := currentFormat.Load().(string); format == formatJSON {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = newTextHandler(output, opts, useColor)
	}
	slogger = slog.New(h)
}

// resolveOutput maps a destination name to a writer. Color is only turned on
// for std streams attached to a terminal; log files never get escape codes.
func resolveOutput(dest string) (io.Writer, bool, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil
	default:
		f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open log output %q: %w", dest, err)
		}
		return f, false, nil
	}
}

// Init applies cfg to the global logger. Empty fields keep their current
// values, so a partial Config is fine.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, err := resolveOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		output = w
		useColor = color
		mu.Unlock()
	}
	if l, ok := parseLevel(cfg.Level); ok {
		currentLevel.Store(int32(l))
	}
	if f, ok := normalizeFormat(cfg.Format); ok {
		currentFormat.Store(f)
	}
	reconfigure()
	return nil
}

// InitWithWriter points the logger at w, replacing the previous destination.
// Tests use this to capture output.
func InitWithWriter(w io.Writer, level, format string, enableColor bool) {
	mu.Lock()
	output = w
	useColor = enableColor
	mu.Unlock()

	if l, ok := parseLevel(level); ok {
		currentLevel.Store(int32(l))
	}
	if f, ok := normalizeFormat(format); ok {
		currentFormat.Store(f)
	}
	reconfigure()
}

// SetLevel changes the minimum level at runtime. Unknown names are ignored.
func SetLevel(level string) {
	l, ok := parseLevel(level)
	if !ok {
		return
	}
	currentLevel.Store(int32(l))
	reconfigure()
}

// SetFormat switches between text and json output at runtime. Unknown
// formats are ignored.
func SetFormat(format string) {
	f, ok := normalizeFormat(format)
	if !ok {
		return
	}
	currentFormat.Store(f)
	reconfigure()
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level. Fields alternate key and value, slog style.
func Debug(msg string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	getLogger().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	if !enabled(LevelInfo) {
		return
	}
	getLogger().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	getLogger().Warn(msg, args...)
}

// Error logs at error level. Errors are never filtered.
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// DebugCtx is Debug plus the request fields carried by ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelDebug) {
		return
	}
	getLogger().Debug(msg, contextArgs(ctx, args)...)
}

// InfoCtx is Info plus the request fields carried by ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelInfo) {
		return
	}
	getLogger().Info(msg, contextArgs(ctx, args)...)
}

// WarnCtx is Warn plus the request fields carried by ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if !enabled(LevelWarn) {
		return
	}
	getLogger().Warn(msg, contextArgs(ctx, args)...)
}

// ErrorCtx is Error plus the request fields carried by ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	getLogger().Error(msg, contextArgs(ctx, args)...)
}

// contextArgs prepends the fields of any LogContext in ctx, so correlation
// identifiers come first on every line.
func contextArgs(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}
	return append(lc.fields(), args...)
}

// With returns a slog.Logger carrying pre-bound attributes for callers that
// emit many lines with the same fields.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}

// Duration converts the time elapsed since start to fractional milliseconds,
// the unit used for duration fields throughout.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
