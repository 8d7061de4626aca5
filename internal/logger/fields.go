package logger

import "log/slog"

// Canonical field names. Log lines across packages reuse these so queries
// against aggregated output only need one spelling per concept.
const (
	// Correlation
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// HTTP
	KeyMethod       = "method"
	KeyRoute        = "route"
	KeyStatusCode   = "status_code"
	KeyClientIP     = "client_ip"
	KeyUserAgent    = "user_agent"
	KeyBytesWritten = "bytes_written"

	// Identity
	KeyUsername = "username"
	KeyUID      = "uid"
	KeyGID      = "gid"

	// Filesystem and store
	KeyPath      = "path"
	KeyOffset    = "offset"
	KeySize      = "size"
	KeyChunks    = "chunks"
	KeyStoreType = "store_type"

	// Outcome
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// Err wraps an error for logging. A nil err yields the zero Attr, which
// slog handlers drop, so call sites never need to branch.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Path wraps a filesystem path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// DurationMs wraps an operation duration in fractional milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
