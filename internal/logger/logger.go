// Package logger writes diagnostic output to a log file. The terminal belongs
// to the form, so nothing is ever written to stdout or stderr.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	slogger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// Init opens path for appending and directs all subsequent log calls to it.
// Calling Init again switches to the new file.
func Init(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	slogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	slogger.Info("Logger initialized", "path", path)
	return nil
}

// InitWriter directs log output to w. Used by tests.
func InitWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	slogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// SetDebug toggles debug-level output.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

func logf(level slog.Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !slogger.Enabled(context.Background(), level) {
		return
	}
	slogger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug logs at debug level.
func Debug(format string, args ...any) { logf(slog.LevelDebug, format, args...) }

// Info logs at info level.
func Info(format string, args ...any) { logf(slog.LevelInfo, format, args...) }

// Warn logs at warn level.
func Warn(format string, args ...any) { logf(slog.LevelWarn, format, args...) }

// Error logs at error level.
func Error(format string, args ...any) { logf(slog.LevelError, format, args...) }

// Close closes the log file and discards further output.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	slogger = slog.New(slog.NewTextHandler(io.Discard, nil))
}
