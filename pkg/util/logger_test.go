package util

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogLevel("production", "debug"))
	assert.Equal(t, slog.LevelWarn, LogLevel("development", "warn"))
	assert.Equal(t, slog.LevelWarn, LogLevel("development", "WARNING"))
	assert.Equal(t, slog.LevelError, LogLevel("production", "error"))

	// Empty or unknown names fall back to the env default.
	assert.Equal(t, slog.LevelDebug, LogLevel("development", ""))
	assert.Equal(t, slog.LevelInfo, LogLevel("production", ""))
	assert.Equal(t, slog.LevelInfo, LogLevel("production", "loud"))
}

func TestNewLogger_LevelOverride(t *testing.T) {
	ctx := context.Background()

	assert.False(t, NewLogger("production", "").Enabled(ctx, slog.LevelDebug))
	assert.True(t, NewLogger("production", "debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewLogger("development", "error").Enabled(ctx, slog.LevelWarn))
}
