package risk

import (
	"time"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/errors"
)

// Thresholds are the decision cutoffs on the 0-100 score. They are owned by
// an external admin surface and injected here; the core only reads them.
type Thresholds struct {
	Warn  int
	Delay int
	Block int

	// AutoApproveBelow is the absolute amount floor under which a transfer
	// is approved without full scoring. List checks still run.
	AutoApproveBelow float64

	// DelayHold is how long a DELAY decision asks the caller to hold.
	DelayHold time.Duration
}

// Weights combine the three detectors' pre-clamped sub-scores. The default
// is an equal-weight sum; the exact weighting is policy, not law.
type Weights struct {
	Amount    float64
	Time      float64
	Recipient float64
}

// MinSamples are the per-detector history sizes below which a detector
// reports insufficient data instead of an anomaly.
type MinSamples struct {
	Amount         int
	TimeBehavioral int
	TimeVelocity   int
	Recipient      int
}

// Config is the full injected configuration of the scoring core.
type Config struct {
	Thresholds Thresholds
	Weights    Weights
	MinSamples MinSamples

	// MeanMultipleCeiling is the "N x mean is always suspicious" absolute
	// rule. It fires regardless of variance; tunable policy constant.
	MeanMultipleCeiling float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			Warn:             30,
			Delay:            60,
			Block:            80,
			AutoApproveBelow: 100,
			DelayHold:        5 * time.Minute,
		},
		Weights: Weights{
			Amount:    1.0,
			Time:      1.0,
			Recipient: 1.0,
		},
		MinSamples: MinSamples{
			Amount:         10,
			TimeBehavioral: 5,
			TimeVelocity:   3,
			Recipient:      5,
		},
		MeanMultipleCeiling: 5.0,
	}
}

// Validate rejects configurations under which the decision ladder breaks.
// An inverted threshold set would make BLOCK unreachable or universal, so
// scoring is refused outright.
func (c Config) Validate() error {
	t := c.Thresholds
	if t.Warn < 0 || t.Block > 100 {
		return errors.NewConfigurationError("THRESHOLD_RANGE", "decision thresholds must lie in [0,100]")
	}
	if !(t.Warn <= t.Delay && t.Delay <= t.Block) {
		return errors.ErrInvalidThresholds
	}
	if c.Weights.Amount < 0 || c.Weights.Time < 0 || c.Weights.Recipient < 0 {
		return errors.NewConfigurationError("NEGATIVE_WEIGHT", "detector weights must be non-negative")
	}
	if c.MinSamples.Amount < 1 || c.MinSamples.TimeBehavioral < 1 || c.MinSamples.TimeVelocity < 1 || c.MinSamples.Recipient < 1 {
		return errors.NewConfigurationError("MIN_SAMPLES", "detector minimum sample sizes must be positive")
	}
	if c.MeanMultipleCeiling <= 1 {
		return errors.NewConfigurationError("MEAN_MULTIPLE", "mean-multiple ceiling must exceed 1")
	}
	return nil
}
