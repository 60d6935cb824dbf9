package util

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger. Development gets debug-level text
// output, everything else JSON at info. A non-empty level overrides the
// env-derived default.
func NewLogger(env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: LogLevel(env, level),
	}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// LogLevel resolves a level name to a slog.Level, falling back to the
// environment's default when the name is empty or unknown.
func LogLevel(env, level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if env == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
