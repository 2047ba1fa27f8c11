package utils

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(old)
	})

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestSessionLoggerDebugDisabled(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	SessionLogger("copilot/gpt-4o")(copilot.SessionEvent{Type: copilot.SessionEventType("message")})
	assert.Equal(t, 0, buf.Len())
}

func TestSessionLoggerDebugEnabled(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	content := `{"label": "Pass"}`
	reasoningText := "checked the brand field"

	SessionLogger("copilot/gpt-4o")(copilot.SessionEvent{
		Type: copilot.SessionEventType("assistant.message"),
		Data: copilot.Data{
			Content:       &content,
			ReasoningText: &reasoningText,
		},
	})

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "Judge session event", logEntry["msg"])
	assert.Equal(t, "copilot/gpt-4o", logEntry["judge"])
	assert.Equal(t, "assistant.message", logEntry["type"])
	assert.Equal(t, content, logEntry["content"])
	assert.Equal(t, reasoningText, logEntry["reasoningText"])
	assert.NotContains(t, logEntry, "deltaContent")
}

func TestAddIf(t *testing.T) {
	attrs := []any{"existing", "value"}

	result := addIf(attrs, "missing", (*int)(nil))
	assert.Equal(t, attrs, result)

	v := 7
	result = addIf(attrs, "number", &v)
	assert.Equal(t, []any{"existing", "value", "number", 7}, result)
}
