package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer and returns a cleanup
// function restoring the original writer.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		Debug("debug message")
		Info("info message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.Contains(t, out, "info message")
	})

	t.Run("ErrorLevelShowsOnlyErrors", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.NotContains(t, out, "info message")
		assert.NotContains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("VERBOSE")

		Info("still info")
		assert.Contains(t, buf.String(), "still info")
	})
}

func TestStructuredFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	Info("write complete", "path", "/docs/a.txt", "bytes_written", 42)

	out := buf.String()
	assert.Contains(t, out, "write complete")
	assert.Contains(t, out, "path=/docs/a.txt")
	assert.Contains(t, out, "bytes_written=42")
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	defer SetFormat("text")

	Info("chunk stored", "key", "/a.__chunk__0", "store_type", "badger")

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))

	assert.Equal(t, "chunk stored", record["msg"])
	assert.Equal(t, "/a.__chunk__0", record["key"])
	assert.Equal(t, "badger", record["store_type"])
}

func TestContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	lc := NewLogContext("10.0.0.7").
		WithRequest("req-123", "PUT", "/api/v1/files/*").
		WithUser("alice", 1000, 1000)
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "request handled", "status_code", 200)

	out := buf.String()
	assert.Contains(t, out, "request_id=req-123")
	assert.Contains(t, out, "client_ip=10.0.0.7")
	assert.Contains(t, out, "username=alice")
	assert.Contains(t, out, "uid=1000")
	assert.Contains(t, out, "status_code=200")
}

func TestTraceFieldsEmitted(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	lc := NewLogContext("10.0.0.7").WithTrace("4bf92f3577b34da6a3ce929d0e0e4736", "00f067aa0ba902b7")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "span linked")

	out := buf.String()
	assert.Contains(t, out, "trace_id=4bf92f3577b34da6a3ce929d0e0e4736")
	assert.Contains(t, out, "span_id=00f067aa0ba902b7")
}

func TestNilErrAttrDropped(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	Info("cleanup finished", Err(nil))
	assert.NotContains(t, buf.String(), "error=")

	buf.Reset()
	Info("cleanup failed", Err(errors.New("disk full")))
	assert.Contains(t, buf.String(), "error=disk full")
}

func TestInvalidFormatIgnored(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")
	SetFormat("yaml")

	Info("still text")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "["), "expected text output, got %q", line)
	assert.Contains(t, line, "still text")
}

func TestContextFieldsWithoutLogContext(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	InfoCtx(context.Background(), "plain message", "op", "read")

	out := buf.String()
	assert.Contains(t, out, "plain message")
	assert.Contains(t, out, "op=read")
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("127.0.0.1")
	derived := lc.WithUser("bob", 2000, 2000)

	assert.Empty(t, lc.Username, "original must not be mutated")
	assert.Equal(t, "bob", derived.Username)
	assert.Equal(t, lc.ClientIP, derived.ClientIP)

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.Clone())
	assert.Zero(t, nilCtx.DurationMs())
}

func TestWithPreboundFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	l := With("store_type", "memory")
	l.Info("store opened")

	out := buf.String()
	assert.Contains(t, out, "store opened")
	assert.Contains(t, out, "store_type=memory")
}

func TestInitWithWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	InitWithWriter(buf, "DEBUG", "text", false)
	defer InitWithWriter(os.Stderr, "INFO", "text", false)

	Debug("visible at debug")
	assert.Contains(t, buf.String(), "visible at debug")
}
