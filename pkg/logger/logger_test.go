package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestHandlerWritesAttrs(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := New(&buf, "info").With("component", "extractor")

	log.Debug("hidden")
	log.Info("page skipped", "page", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "page skipped")
	assert.Contains(t, out, "component=extractor")
	assert.Contains(t, out, "page=3")
}
