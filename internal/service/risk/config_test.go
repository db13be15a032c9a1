package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "warn above delay",
			mutate: func(c *Config) { c.Thresholds.Warn = 70 },
		},
		{
			name:   "delay above block",
			mutate: func(c *Config) { c.Thresholds.Delay = 90 },
		},
		{
			name:   "block above 100",
			mutate: func(c *Config) { c.Thresholds.Block = 101 },
		},
		{
			name:   "negative warn",
			mutate: func(c *Config) { c.Thresholds.Warn = -1 },
		},
		{
			name:   "negative weight",
			mutate: func(c *Config) { c.Weights.Time = -0.5 },
		},
		{
			name:   "zero min samples",
			mutate: func(c *Config) { c.MinSamples.Amount = 0 },
		},
		{
			name:   "mean multiple ceiling at one",
			mutate: func(c *Config) { c.MeanMultipleCeiling = 1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigEqualThresholdsAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.Warn = 60
	cfg.Thresholds.Delay = 60
	cfg.Thresholds.Block = 60
	assert.NoError(t, cfg.Validate())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "APPROVE", DecisionApprove.String())
	assert.Equal(t, "WARN", DecisionWarn.String())
	assert.Equal(t, "DELAY", DecisionDelay.String())
	assert.Equal(t, "BLOCK", DecisionBlock.String())
	assert.Equal(t, "UNKNOWN", Decision(42).String())
}
