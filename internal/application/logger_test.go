package application

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("info", "json", &buf)
	log.Info("started", "component", "test")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "started", m["msg"])
	assert.Equal(t, "test", m["component"])
	assert.NotContains(t, m, "source")
	assert.Same(t, log.Handler(), slog.Default().Handler())
}

func TestNewLogger_TextAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "TEXT", &buf).Debug("hello")
	assert.Contains(t, buf.String(), "source=")
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.level, "json", &buf)
			ctx := context.Background()
			assert.True(t, log.Enabled(ctx, tt.want))
			assert.False(t, log.Enabled(ctx, tt.want-1))
		})
	}
}
