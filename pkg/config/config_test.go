package config

import (
	"testing"

	"github.com/jonas/postflow/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "", cfg.Server.LogLevel)
	assert.Equal(t, "*/5 * * * *", cfg.Worker.SweepSchedule)

	// The default sweep cadence must survive worker startup validation.
	assert.NoError(t, util.ValidateCronExpr(cfg.Worker.SweepSchedule))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WORKER_SWEEP_SCHEDULE", "0 3 * * *")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SERVER_BASE_URL", "https://postflow.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0 3 * * *", cfg.Worker.SweepSchedule)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "https://postflow.example.com", cfg.Server.BaseURL)
}
