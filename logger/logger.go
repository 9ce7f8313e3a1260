package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is a logging threshold
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// LevelEnv names the environment variable consulted by ParseLevel callers
const LevelEnv = "INLINECHANGE_LOG_LEVEL"

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
	closer  io.Closer
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level; anything else is info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Init directs log output to w at the given level
func Init(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()
	current = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitFile opens (appending) the log file at path and directs output there.
// An empty path discards all output.
func InitFile(path string, level Level) error {
	if path == "" {
		Init(io.Discard, level)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	Init(f, level)

	mu.Lock()
	prev := closer
	closer = f
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close releases the log file opened by InitFile
func Close() {
	mu.Lock()
	defer mu.Unlock()
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func logf(level Level, format string, args ...any) {
	l := get()
	if !l.Enabled(context.Background(), level) {
		return
	}
	l.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug logs at debug level
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info logs at info level
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn logs at warn level
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error logs at error level
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Printf is a debug-level adapter for libraries that take a printf-style log func
func Printf(format string, args ...any) { logf(LevelDebug, format, args...) }

// Trace logs entry to name and returns a func that logs the elapsed time.
// Usage: defer logger.Trace("engine.runDiff")()
func Trace(name string) func() {
	l := get()
	if !l.Enabled(context.Background(), LevelDebug) {
		return func() {}
	}
	start := time.Now()
	l.Debug("enter " + name)
	return func() {
		l.Debug("leave "+name, slog.Duration("elapsed", time.Since(start)))
	}
}
