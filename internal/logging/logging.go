package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init creates and sets the package-level default slog logger on stderr.
// format is "json" or "text"; empty picks JSON when the table is written to
// stdout (machine consumers) and text otherwise.
func Init(format string, tableOnStdout bool, level slog.Level) *slog.Logger {
	logger := slog.New(NewHandler(os.Stderr, Resolve(format, tableOnStdout), level))
	slog.SetDefault(logger)
	return logger
}

// Resolve returns the effective handler format.
func Resolve(format string, tableOnStdout bool) string {
	switch strings.ToLower(format) {
	case "json":
		return "json"
	case "text":
		return "text"
	}
	if tableOnStdout {
		return "json"
	}
	return "text"
}

// NewHandler returns a JSON or text handler writing to w.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
