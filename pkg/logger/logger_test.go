package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelDebug})

	log.Info("request completed",
		String("method", "GET"),
		Int("status", 200),
		Int64("duration_ms", 12),
	)

	entry := logLine(t, &buf)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.EqualValues(t, 200, entry["status"])
	assert.NotEmpty(t, entry["ts"])
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelWarn})

	log.Debug("dropped")
	log.Info("dropped too")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_WithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo}).
		With(Component("gemini"))

	log.Error("generation failed", Err(errors.New("quota exceeded")))

	entry := logLine(t, &buf)
	assert.Equal(t, "gemini", entry["component"])
	assert.Equal(t, "quota exceeded", entry["error"])
}

func TestLogger_FieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "error", Value: nil}, Err(nil))
	assert.Equal(t, Field{Key: "latency_ms", Value: int64(1500)}, Latency(1500*time.Millisecond))
	assert.Equal(t, Field{Key: "payload", Value: []string{"a"}}, Any("payload", []string{"a"}))
}

func TestLogger_CallSiteFieldsOverrideWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Level: LevelInfo}).
		With(String("component", "http"))

	log.Info("override", String("component", "handlers"))

	entry := logLine(t, &buf)
	assert.Equal(t, "handlers", entry["component"])
}
