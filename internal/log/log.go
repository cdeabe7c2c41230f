// ABOUTME: Leveled logger on slog levels for CLI and TUI sessions
// ABOUTME: Global level via SetLevel; output defaults to stderr, redirectable via SetOutput

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level atomic.Int64

	outMu      sync.Mutex
	out        io.Writer = os.Stderr
	timestamps bool
)

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// SetOutput redirects log output. Lines written to a non-terminal writer
// (the TUI log file) carry a timestamp prefix.
func SetOutput(w io.Writer, withTime bool) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
	timestamps = withTime
}

// OpenFile redirects output to an append-only log file and returns a closer
// that restores stderr.
func OpenFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	SetOutput(f, true)
	return func() error {
		SetOutput(os.Stderr, false)
		return f.Close()
	}, nil
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	emit(LevelDebug, "[DEBUG] ", format, args)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	emit(LevelInfo, "[INFO] ", format, args)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	emit(LevelWarn, "[WARN] ", format, args)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	emit(LevelError, "[ERROR] ", format, args)
}

func emit(l slog.Level, prefix, format string, args []any) {
	if l < LevelError && slog.Level(level.Load()) > l {
		return
	}

	outMu.Lock()
	defer outMu.Unlock()
	if timestamps {
		prefix = time.Now().Format("2006-01-02 15:04:05.000 ") + prefix
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}
