package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	New("info", "JSON", &buf).Info("checkpoint", "persisted", true)

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "checkpoint", m["msg"])
	require.Equal(t, true, m["persisted"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	New("", "", &buf).Info("attempt started", "attempt", 1)
	require.Contains(t, buf.String(), "attempt=1")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.level))

			var buf bytes.Buffer
			logger := New(tt.level, "text", &buf)
			logger.Log(context.TODO(), tt.want, "should appear")
			require.NotZero(t, buf.Len())

			buf.Reset()
			logger.Log(context.TODO(), tt.want-1, "should be suppressed")
			require.Zero(t, buf.Len())
		})
	}
}
