package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/agentstrap/internal/ports"
)

func TestConsoleLogger_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))

	logger.Info(context.Background(), "probing environment", ports.F("method", "runtime-launch"))

	out := buf.String()
	require.Contains(t, out, "[INFO]")
	require.Contains(t, out, "probing environment")
	require.Contains(t, out, "method=runtime-launch")
}

func TestConsoleLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelWarn))

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden too")
	logger.Error(context.Background(), "visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}

func TestConsoleLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithJSONFormat(true), WithTimestamp(false))

	logger.Warn(context.Background(), "method failed", ports.F("exit_code", 2))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "method failed", entry["msg"])
	require.Equal(t, float64(2), entry["exit_code"])
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewConsoleLogger(WithOutput(&buf), WithTimestamp(false))
	child := base.With(ports.F("run_id", "abc123"))

	child.Info(context.Background(), "attempting method", ports.F("method", "manual"))

	out := buf.String()
	require.Contains(t, out, "run_id=abc123")
	require.Contains(t, out, "method=manual")
}

func TestConsoleLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf))

	logger.Debug(context.Background(), "before")
	logger.SetLevel(ports.LevelDebug)
	logger.Debug(context.Background(), "after")

	lines := strings.TrimSpace(buf.String())
	require.NotContains(t, lines, "before")
	require.Contains(t, lines, "after")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	// Must not panic and With must return a usable logger.
	logger.Info(context.Background(), "ignored")
	child := logger.With(ports.F("k", "v"))
	child.Error(context.Background(), "still ignored")

	require.Equal(t, ports.LevelInfo, logger.Level())
	logger.SetLevel(ports.LevelError)
	require.Equal(t, ports.LevelError, logger.Level())
}
