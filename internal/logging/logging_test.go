package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelError, levelFromString("ERROR"))
	assert.Equal(t, slog.LevelWarn, levelFromString(" warning "))
	assert.Equal(t, slog.LevelInfo, levelFromString("info"))
	assert.Equal(t, slog.LevelDebug, levelFromString("verbose"))
}

func TestJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf, "info", "json").With("component", "test").Info("category parsed", "rows", 3)
	NewWithWriter(&buf, "info", "json").Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "category parsed", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestTextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf, "debug", "").Debug("probe", "url", "https://example.org")
	assert.Contains(t, buf.String(), "msg=probe")
	assert.Contains(t, buf.String(), "url=https://example.org")
}
