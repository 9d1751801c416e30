package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json")
	l.Debug("hidden")
	l.Info("hello", slog.Uint64("user_id", 7))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, float64(7), record["user_id"])
}

func TestWithUserID(t *testing.T) {
	var buf bytes.Buffer
	original := Default()
	defer SetLogger(original)

	SetLogger(New(&buf, "info", "text"))
	WithUserID(42).Info("joined")

	assert.Contains(t, buf.String(), "user_id=42")
	assert.Contains(t, buf.String(), "msg=joined")
}
