package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysentinel/transfer-risk-backend/internal/testutil/fixtures"
)

func TestRecipientBuildProfiles(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	history := b.AddSteady(10, 1000, 24*time.Hour, "grocer@okbank").Build()

	profiles := profiler.BuildProfiles(history)

	require.Len(t, profiles, 1)
	p := profiles["grocer@okbank"]
	require.NotNil(t, p)

	assert.Equal(t, 10, p.TransactionCount)
	assert.InDelta(t, 1000, p.AvgAmount, 0.001)
	assert.InDelta(t, 1000, p.MinAmount, 0.001)
	assert.InDelta(t, 1000, p.MaxAmount, 0.001)
	assert.True(t, p.IsFrequentPayee)
	assert.Equal(t, CategoryRegularMedium, p.Category)
	// Perfectly periodic daily transfers.
	assert.InDelta(t, 1.0, p.Regularity, 0.001)
	assert.InDelta(t, 1.0, p.AvgDaysBetween, 0.001)
	assert.True(t, p.TypicalHours[11])
	assert.False(t, p.TypicalHours[3])
	assert.Zero(t, p.RiskScore)
}

func TestRecipientProfileCategories(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	b.AddSteady(10, 200, 24*time.Hour, "chai@okbank")
	b.Add(50000, 12*time.Hour, "onetime@okbank")
	b.Add(900, 36*time.Hour, "sometimes@okbank")
	b.Add(950, 96*time.Hour, "sometimes@okbank")
	history := b.Build()

	profiles := profiler.BuildProfiles(history)

	assert.Equal(t, CategoryRegularSmall, profiles["chai@okbank"].Category)
	assert.Equal(t, CategoryOneTime, profiles["onetime@okbank"].Category)
	assert.Equal(t, CategoryOccasional, profiles["sometimes@okbank"].Category)
}

func TestRecipientProfileRiskPenalties(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	// A dominant payee so the rare one falls under the 1% ratio.
	b.AddSteady(120, 1000, 12*time.Hour, "main@okbank")
	b.Add(60000, 30*time.Minute, "rare@okbank")
	history := b.Build()

	profiles := profiler.BuildProfiles(history)
	rare := profiles["rare@okbank"]
	require.NotNil(t, rare)

	// 1/121 < 1% rarity (+20) and max > 50k (+15).
	assert.Equal(t, 35, rare.RiskScore)
	assert.False(t, rare.IsFrequentPayee)
}

func TestRecipientNewPayee(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())

	t.Run("first transaction ever", func(t *testing.T) {
		result := profiler.DetectAnomaly("new@okbank", "New Shop", 500,
			time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
			map[string]*RecipientProfile{}, 0)

		assert.True(t, result.IsNewPayee)
		assert.False(t, result.IsUnusual) // no baseline to call it unusual against
		assert.False(t, result.HasEnoughData)
		assert.InDelta(t, 1.0, result.Confidence, 0.001)
		assert.Equal(t, NewPayeePoints, result.RiskScore)
		require.NotEmpty(t, result.Reasons)
		assert.Equal(t, ReasonNewPayee, result.Reasons[0].Code)
	})

	t.Run("new payee with established history", func(t *testing.T) {
		b := fixtures.NewHistoryBuilder(t)
		history := b.AddSteady(10, 1000, 24*time.Hour, "grocer@okbank").Build()
		profiles := profiler.BuildProfiles(history)

		result := profiler.DetectAnomaly("new@okbank", "New Shop", 20000,
			b.Start(), profiles, len(history))

		assert.True(t, result.IsNewPayee)
		assert.True(t, result.IsUnusual)
		assert.True(t, result.HasEnoughData)
		// new payee +25, high amount to unfamiliar payee +20
		assert.Equal(t, 45, result.RiskScore)

		codes := reasonCodes(result.Reasons)
		assert.Contains(t, codes, ReasonNewPayee)
		assert.Contains(t, codes, ReasonPayeeHighAmountUnfamiliar)
	})
}

func TestRecipientKnownPayeeInsufficientHistory(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	history := b.AddSteady(3, 1000, 24*time.Hour, "grocer@okbank").Build()
	profiles := profiler.BuildProfiles(history)

	result := profiler.DetectAnomaly("grocer@okbank", "Grocer", 50000,
		b.Start(), profiles, len(history))

	assert.False(t, result.IsUnusual)
	assert.False(t, result.HasEnoughData)
	assert.Zero(t, result.RiskScore)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, ReasonInsufficientPayeeHistory, result.Reasons[0].Code)
}

func TestRecipientAmountDeviation(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	history := b.AddSteady(10, 1000, 24*time.Hour, "grocer@okbank").Build()
	profiles := profiler.BuildProfiles(history)

	// 4100 deviates 3.1x from the 1000 average and exceeds 1.5x the max.
	result := profiler.DetectAnomaly("grocer@okbank", "Grocer", 4100,
		b.Start().Add(10*24*time.Hour), profiles, len(history))

	assert.True(t, result.IsUnusual)
	assert.True(t, result.HasEnoughData)
	assert.InDelta(t, 3.1, result.Deviation, 0.001)
	assert.Equal(t, PayeeDeviation3xPoints, result.RiskScore)
	assert.InDelta(t, 1.0, result.Confidence, 0.001)

	codes := reasonCodes(result.Reasons)
	assert.Contains(t, codes, ReasonPayeeAmountDeviation)
	assert.Contains(t, codes, ReasonPayeeAboveMax)
}

func TestRecipientUnusualHourAppendsReason(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	history := b.AddSteady(10, 1000, 24*time.Hour, "grocer@okbank").Build()
	profiles := profiler.BuildProfiles(history)

	// Usual amount at 03:00, far outside the payee's 11:00 habit.
	ts := time.Date(2026, 3, 21, 3, 0, 0, 0, time.UTC)
	result := profiler.DetectAnomaly("grocer@okbank", "Grocer", 1000, ts, profiles, len(history))

	assert.True(t, result.IsUnusual)
	assert.Zero(t, result.RiskScore) // the hour flag carries no points
	assert.Contains(t, reasonCodes(result.Reasons), ReasonPayeeUnusualHour)
}

func TestRecipientRarePayee(t *testing.T) {
	profiler := NewRecipientProfiler(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	b.AddSteady(30, 1000, 12*time.Hour, "main@okbank")
	b.Add(500, 30*time.Minute, "rare@okbank")
	history := b.Build()
	profiles := profiler.BuildProfiles(history)

	result := profiler.DetectAnomaly("rare@okbank", "Rare", 500,
		b.Start().Add(30*24*time.Hour), profiles, len(history))

	assert.False(t, result.IsNewPayee)
	assert.Equal(t, RarePayeePoints, result.RiskScore)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
	assert.Contains(t, reasonCodes(result.Reasons), ReasonRarePayee)
}

func reasonCodes(reasons []Reason) []ReasonCode {
	codes := make([]ReasonCode, 0, len(reasons))
	for _, r := range reasons {
		codes = append(codes, r.Code)
	}
	return codes
}
