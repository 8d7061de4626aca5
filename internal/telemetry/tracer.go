package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for spans. OpenTelemetry semantic conventions are used
// where one exists; filesystem and store attributes carry their own
// prefixes.
const (
	// HTTP.
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
	AttrClientIP   = "client.address"
	AttrRequestID  = "http.request_id"

	// Filesystem.
	AttrFSPath   = "fs.path"
	AttrFSOffset = "fs.offset"
	AttrFSSize   = "fs.size"

	// Store.
	AttrStoreType = "store.type"
	AttrStoreKey  = "store.key"

	// Identity.
	AttrUsername = "user.name"
	AttrAuth     = "auth.method"
)

// Span names. The HTTP request span is the root; filesystem and store
// spans nest underneath it.
const (
	SpanHTTPRequest = "http.request"

	SpanFSRead    = "fs.read"
	SpanFSWrite   = "fs.write"
	SpanFSList    = "fs.list"
	SpanFSDelete  = "fs.delete"
	SpanFSMkdir   = "fs.mkdir"
	SpanFSStat    = "fs.stat"
	SpanFSSetAttr = "fs.setattr"

	SpanStoreGet    = "store.get"
	SpanStorePut    = "store.put"
	SpanStoreDelete = "store.delete"
	SpanStoreList   = "store.list"

	SpanAuthLogin = "auth.login"
)

// HTTPMethod returns an attribute for the HTTP request method.
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPRoute returns an attribute for the matched route pattern.
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for the response status code.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// ClientIP returns an attribute for the client address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// RequestID returns an attribute for the request correlation ID.
func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}

// FSPath returns an attribute for the filesystem path.
func FSPath(path string) attribute.KeyValue {
	return attribute.String(AttrFSPath, path)
}

// FSOffset returns an attribute for an I/O offset.
func FSOffset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrFSOffset, int64(offset))
}

// FSSize returns an attribute for a byte count or file size.
func FSSize(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrFSSize, int64(size))
}

// StoreType returns an attribute for the store backend name.
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// StoreKey returns an attribute for a store key.
func StoreKey(key string) attribute.KeyValue {
	return attribute.String(AttrStoreKey, key)
}

// Username returns an attribute for the authenticated username.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// AuthMethod returns an attribute for the authentication method.
func AuthMethod(method string) attribute.KeyValue {
	return attribute.String(AttrAuth, method)
}

// StartFSSpan starts a span for a filesystem operation against a path.
func StartFSSpan(ctx context.Context, name, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{FSPath(path)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(all...))
}

// StartStoreSpan starts a span for a key-value store operation.
func StartStoreSpan(ctx context.Context, name, storeType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{StoreType(storeType)}, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(all...))
}

// StartHTTPSpan starts the root span for an incoming HTTP request.
func StartHTTPSpan(ctx context.Context, method, route string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{HTTPMethod(method), HTTPRoute(route)}, attrs...)
	return StartSpan(ctx, SpanHTTPRequest, trace.WithAttributes(all...))
}
