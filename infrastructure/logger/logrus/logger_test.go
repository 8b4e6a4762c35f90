package logrus

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockups-app-api/core/interfaces"
)

var _ interfaces.Logger = (*Logger)(nil)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	l.Info("Phase finished", map[string]interface{}{"phase": "layout", "api_calls": 2})
	l.Debug("no fields", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "Phase finished", entries[0]["msg"])
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "layout", entries[0]["phase"])
	assert.EqualValues(t, 2, entries[0]["api_calls"])
	assert.Equal(t, "debug", entries[1]["level"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warn("w", nil)
	l.Error("e", map[string]interface{}{"error": "boom"})

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warning", entries[0]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestLogger_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "chatty")

	l.Debug("hidden", nil)
	l.Info("shown", nil)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestLogger_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockups.log")
	l := NewLogger(Config{Level: "info", File: path})

	l.Info("to file", map[string]interface{}{"run_id": "abc"})
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"abc"`)
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	assert.NoError(t, NewLogger(Config{}).Close())
}
