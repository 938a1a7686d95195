// Package debug provides debug logging functionality using log/slog
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	// logger is the global debug logger instance
	logger = newLogger(io.Discard, false)
	// enabled indicates if debug logging is enabled
	enabled bool
	// mu protects the logger and enabled flag
	mu sync.RWMutex
)

func newLogger(w io.Writer, enable bool) *slog.Logger {
	level := slog.LevelError + 1 // above any level actually logged
	if enable {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Init initializes the debug logger.
// If enable is true, debug logs are written to os.Stderr,
// otherwise they are discarded.
func Init(enable bool) {
	SetOutput(os.Stderr, enable)
}

// SetOutput directs the debug logger to w.
func SetOutput(w io.Writer, enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	logger = newLogger(w, enable)
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// Statement logs one executed statement with its timing.
func Statement(dialect, query, kind string, started time.Time, err error) {
	l := Logger()
	if err != nil {
		l.Debug("statement failed", "dialect", dialect, "query", query, "duration", time.Since(started), "error", err)
		return
	}
	l.Debug("statement executed", "dialect", dialect, "query", query, "kind", kind, "duration", time.Since(started))
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
