package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", JSON: true, Output: &buf})

	logger.Info("hidden")
	logger.Warn("directory invalid", "path", "/data")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "directory invalid", entry["msg"])
	require.Equal(t, "/data", entry["path"])
	require.Equal(t, "WARN", entry["level"])
}

func TestNew_Terminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{NoColor: true, Output: &buf})

	logger.Debug("hidden")
	logger.Info("validated", "files", 3)

	out := buf.String()
	require.Contains(t, out, "validated")
	require.Contains(t, out, "files=3")
	require.NotContains(t, out, "hidden")
	require.NotContains(t, out, "\x1b[")
}
