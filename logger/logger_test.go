package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"TRACE", LevelDebug},
		{" warn ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"info", LevelInfo},
		{"", LevelInfo},
		{"loud", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, LevelInfo)
	defer Close()

	Debug("hidden %d", 1)
	Info("shown %d", 2)
	Error("failed: %v", "boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden 1", "debug filtered")
	assert.Contains(t, out, "shown 2", "info kept")
	assert.Contains(t, out, "failed: boom", "error kept")
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, LevelDebug)
	defer Close()

	func() {
		defer Trace("unit.work")()
	}()

	out := buf.String()
	assert.Contains(t, out, "enter unit.work", "enter line")
	assert.Contains(t, out, "leave unit.work", "leave line")
	assert.Contains(t, out, "elapsed=", "elapsed attr")
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inlinechange.log")
	require.NoError(t, InitFile(path, LevelDebug))

	Warn("written to %s", "file")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file", "file contents")
}
