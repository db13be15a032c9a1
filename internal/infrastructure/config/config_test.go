package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Risk.Thresholds.Warn)
	assert.Equal(t, 60, cfg.Risk.Thresholds.Delay)
	assert.Equal(t, 80, cfg.Risk.Thresholds.Block)
	assert.Equal(t, 5*time.Minute, cfg.Risk.Thresholds.DelayHold)
	assert.Equal(t, 500, cfg.Database.HistoryLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TRE_SERVER_PORT", "9999")
	t.Setenv("TRE_ENVIRONMENT", "staging")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadRejectsBrokenThresholds(t *testing.T) {
	t.Setenv("TRE_RISK_THRESHOLDS_WARN", "90")

	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

func TestRiskCoreConfigRoundTrip(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	core := cfg.RiskCoreConfig()
	require.NoError(t, core.Validate())
	assert.Equal(t, cfg.Risk.MinSamples.Amount, core.MinSamples.Amount)
	assert.Equal(t, cfg.Risk.MeanMultipleCeiling, core.MeanMultipleCeiling)
}
