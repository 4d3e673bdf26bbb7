package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Europe/Bucharest", cfg.Timezone)
	assert.Equal(t, RunModeInterval, cfg.RunMode)
	assert.Equal(t, BackendFCM, cfg.PushBackend)
	assert.Equal(t, PolicyAllOpen, cfg.AggregationPolicy)
	assert.Equal(t, 2, cfg.DueWindowDays)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoad_InvalidRunMode(t *testing.T) {
	t.Setenv("RUN_MODE", "cron")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("PUSH_BACKEND", "smoke-signals")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	t.Setenv("AGGREGATION_POLICY", "everything")
	_, err := Load()
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	cfg := Config{Timezone: "Europe/Bucharest"}
	assert.Equal(t, "Europe/Bucharest", cfg.Location().String())
}
