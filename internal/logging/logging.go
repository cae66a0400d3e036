// Package logging provides a shared, structured logger for the cli-pdf application.
//
// It wraps the standard library's [log/slog] package and provides a single
// initialization point so all components share the same output handler and
// log level. The log level is read from CLI_PDF_LOG_LEVEL (debug, info, warn,
// error) and defaults to INFO.
//
// The terminal is owned by the Bubble Tea program while the viewer runs, so
// log lines written to stderr would land on top of the rendered pages. Set
// CLI_PDF_LOG_FILE to send output to a file instead; stderr is only used when
// no file is configured or the file cannot be opened.
//
// Usage:
//
//	log := logging.New("viewer")
//	log.Debug("dimensions cached", "pages", n)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	initLogger sync.Once

	// baseLogger is the singleton logger instance shared by all components.
	// Component-specific loggers are derived from this via With().
	baseLogger *slog.Logger
)

// New returns a structured logger scoped to the given component name.
//
// The component name is added as a "component" attribute to every entry.
// If component is empty, the base logger is returned without additional
// attributes.
func New(component string) *slog.Logger {
	initLogger.Do(func() {
		baseLogger = slog.New(slog.NewTextHandler(openOutput(os.Getenv("CLI_PDF_LOG_FILE")), &slog.HandlerOptions{
			Level: parseLevel(os.Getenv("CLI_PDF_LOG_LEVEL")),
		}))
	})
	if component == "" {
		return baseLogger
	}
	return baseLogger.With("component", component)
}

// openOutput resolves the log destination. The file is opened in append mode
// and intentionally never closed: it lives for the whole process.
func openOutput(path string) io.Writer {
	path = strings.TrimSpace(path)
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return os.Stderr
	}
	return f
}

// parseLevel converts a human-readable log level string to a [slog.Level].
//
// Recognized values (case-insensitive, whitespace-trimmed):
//   - "debug"           → slog.LevelDebug
//   - "warn", "warning" → slog.LevelWarn
//   - "error"           → slog.LevelError
//   - anything else     → slog.LevelInfo
func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
