package logger

import (
	"context"
	"time"
)

// logContextKey is unexported so only this package can attach the value.
type logContextKey struct{}

// LogContext carries the request-scoped fields that every log line written
// while serving that request should repeat. Middleware derives enriched
// copies with the With* builders instead of mutating a shared value.
type LogContext struct {
	TraceID   string
	SpanID    string
	RequestID string
	Method    string
	Route     string
	ClientIP  string
	Username  string
	UID       uint32
	GID       uint32
	StartTime time.Time
}

// WithContext attaches lc to ctx for the *Ctx logging functions to find.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey{}, lc)
}

// FromContext returns the LogContext attached to ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey{}).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for a request arriving from clientIP,
// stamping the arrival time for DurationMs.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{ClientIP: clientIP, StartTime: time.Now()}
}

// Clone returns a copy, or nil on a nil receiver.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// with applies a mutation to a copy, leaving the receiver untouched.
func (lc *LogContext) with(apply func(*LogContext)) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		apply(clone)
	}
	return clone
}

// WithRequest derives a LogContext with the request identifiers filled in.
func (lc *LogContext) WithRequest(requestID, method, route string) *LogContext {
	return lc.with(func(c *LogContext) {
		c.RequestID = requestID
		c.Method = method
		c.Route = route
	})
}

// WithUser derives a LogContext carrying the authenticated identity.
func (lc *LogContext) WithUser(username string, uid, gid uint32) *LogContext {
	return lc.with(func(c *LogContext) {
		c.Username = username
		c.UID = uid
		c.GID = gid
	})
}

// WithTrace derives a LogContext carrying OpenTelemetry identifiers.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	return lc.with(func(c *LogContext) {
		c.TraceID = traceID
		c.SpanID = spanID
	})
}

// DurationMs is the time elapsed since the request arrived, in fractional
// milliseconds. Zero when the receiver is nil or was never stamped.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}

// fields renders the populated entries as alternating key-value pairs for
// slog. Method and route stay out; the request lines carry those already.
func (lc *LogContext) fields() []any {
	args := make([]any, 0, 12)
	if lc.TraceID != "" {
		args = append(args, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		args = append(args, KeySpanID, lc.SpanID)
	}
	if lc.RequestID != "" {
		args = append(args, KeyRequestID, lc.RequestID)
	}
	if lc.ClientIP != "" {
		args = append(args, KeyClientIP, lc.ClientIP)
	}
	if lc.Username != "" {
		args = append(args, KeyUsername, lc.Username)
	}
	if lc.UID != 0 {
		args = append(args, KeyUID, lc.UID)
	}
	if lc.GID != 0 {
		args = append(args, KeyGID, lc.GID)
	}
	return args
}
