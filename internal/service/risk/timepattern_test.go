package risk

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
	"github.com/paysentinel/transfer-risk-backend/internal/testutil/fixtures"
)

func TestTimeBasicPatterns(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	userID := uuid.New()

	// Tuesday 2026-03-10 in UTC; weekday unless stated otherwise.
	day := func(h, m int) time.Time {
		return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
	}
	saturday := func(h, m int) time.Time {
		return time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		ts        time.Time
		amount    float64
		wantScore int
		check     func(t *testing.T, p TimePatterns)
	}{
		{
			name:      "business hours small amount",
			ts:        day(11, 30),
			amount:    500,
			wantScore: 0,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.BusinessHours)
				assert.False(t, p.Weekend)
			},
		},
		{
			name:   "late night is also overnight",
			ts:     day(2, 30),
			amount: 500,
			// late-night +20, overnight +25
			wantScore: 45,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.LateNight)
				assert.True(t, p.Overnight)
				assert.False(t, p.EarlyMorning)
			},
		},
		{
			name:      "overnight band before midnight",
			ts:        day(23, 30),
			amount:    500,
			wantScore: TimeOvernightPoints,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.Overnight)
				assert.False(t, p.LateNight)
			},
		},
		{
			name:      "weekend high amount",
			ts:        saturday(14, 30),
			amount:    25000,
			wantScore: TimeWeekendHighAmountPoints,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.Weekend)
				assert.True(t, p.WeekendHighAmount)
				assert.False(t, p.BusinessHours)
			},
		},
		{
			name:      "high value off hours",
			ts:        day(20, 30),
			amount:    60000,
			wantScore: TimeHighValueOffHoursPoints,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.HighValueOffHours)
				assert.False(t, p.MediumValueLate)
				assert.True(t, p.DinnerWindow)
			},
		},
		{
			name:   "everything at once clamps to the cap",
			ts:     saturday(2, 30),
			amount: 60000,
			// 20+25+30+20+15 = 110, clamped
			wantScore: MaxTimeRiskScore,
			check: func(t *testing.T, p TimePatterns) {
				assert.True(t, p.LateNight)
				assert.True(t, p.HighValueOffHours)
				assert.True(t, p.MediumValueLate)
				assert.True(t, p.WeekendHighAmount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := detector.DetectPatterns(userID, tt.ts, tt.amount, nil)

			assert.Equal(t, tt.wantScore, analysis.RiskScore)
			assert.True(t, analysis.Patterns.BehavioralInsufficient)
			assert.True(t, analysis.Patterns.VelocityInsufficient)
			// Base confidence halved for missing history.
			assert.InDelta(t, 0.25, analysis.Confidence, 0.001)
			if tt.check != nil {
				tt.check(t, analysis.Patterns)
			}
		})
	}
}

func TestTimeBehavioralFirstTimeHour(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	// Ten daily transactions, all at 11:00.
	history := b.AddSteady(10, 1000, 24*time.Hour, "payee-001").Build()

	// Assess at 15:30, an hour never used before.
	ts := b.Start().Add(10*24*time.Hour + 4*time.Hour + 30*time.Minute)
	analysis := detector.DetectPatterns(b.UserID(), ts, 500, history)

	assert.True(t, analysis.Patterns.FirstTimeHour)
	assert.False(t, analysis.Patterns.FirstTimeDay)
	assert.False(t, analysis.Patterns.RoundHour)
	assert.Greater(t, analysis.Patterns.HourlyDeviation, FrequencyDeviationThreshold)
	// first-time-hour +10, hourly deviation +25
	assert.Equal(t, 35, analysis.RiskScore)
	assert.InDelta(t, 0.6, analysis.Confidence, 0.001)
}

func TestTimeVelocityBurst(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	// Five transactions two minutes apart.
	history := b.AddSteady(5, 500, 2*time.Minute, "payee-001").Build()

	ts := b.Start().Add(8 * time.Minute) // timestamp of the newest one
	analysis := detector.DetectPatterns(b.UserID(), ts, 500, history)

	p := analysis.Patterns
	assert.Equal(t, 5, p.RecentCount)
	assert.True(t, p.RapidSuccession)
	assert.True(t, p.BurstActivity)
	// 5 in the hour (+15) and 4 rapid pairs (+10)
	assert.Equal(t, 25, p.VelocityRisk)
	assert.Equal(t, MaxTimeRiskScore, analysis.RiskScore)

	types := make([]string, 0, len(analysis.Alerts))
	for _, a := range analysis.Alerts {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, "burst_activity")
	assert.Contains(t, types, "rapid_succession")
}

func TestTimeVelocityInsufficientHistory(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	history := b.AddSteady(2, 500, 2*time.Minute, "payee-001").Build()

	ts := b.Start().Add(4 * time.Minute)
	analysis := detector.DetectPatterns(b.UserID(), ts, 500, history)

	assert.True(t, analysis.Patterns.VelocityInsufficient)
	assert.False(t, analysis.Patterns.RapidSuccession)
	assert.Zero(t, analysis.Patterns.VelocityRisk)
}

func TestTimeSeasonalFlags(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	userID := uuid.New()

	christmas := time.Date(2026, 12, 25, 11, 30, 0, 0, time.UTC)
	analysis := detector.DetectPatterns(userID, christmas, 500, nil)
	assert.True(t, analysis.Patterns.Holiday)
	assert.True(t, analysis.Patterns.MonthEnd)

	payday := time.Date(2026, 3, 3, 11, 30, 0, 0, time.UTC)
	analysis = detector.DetectPatterns(userID, payday, 500, nil)
	assert.True(t, analysis.Patterns.PaydayWindow)
	assert.False(t, analysis.Patterns.Holiday)
}

func TestTimeWeekendSpendRatio(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	// Saturday 2026-03-14 and Sunday 2026-03-15 plus five weekdays.
	b.WithStart(time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)) // Monday
	history := b.AddSteady(7, 500, 24*time.Hour, "payee-001").Build()

	ts := b.Start().Add(7 * 24 * time.Hour)
	analysis := detector.DetectPatterns(b.UserID(), ts, 500, history)

	// 2 weekend txs / 2 days vs 5 weekday txs / 5 days.
	assert.InDelta(t, 1.0, analysis.Patterns.WeekendSpendRatio, 0.001)
}

func TestTimeAlertsOrderedBySeverity(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	b := fixtures.NewHistoryBuilder(t)
	// Burst ending at 2:30 so high and medium alerts coexist.
	b.WithStart(time.Date(2026, 3, 10, 2, 20, 0, 0, time.UTC))
	history := b.AddSteady(5, 500, 2*time.Minute, "payee-001").Build()

	ts := b.Start().Add(8 * time.Minute)
	analysis := detector.DetectPatterns(b.UserID(), ts, 500, history)

	require.NotEmpty(t, analysis.Alerts)
	lastRank := 3
	for _, a := range analysis.Alerts {
		rank := severityRank(a.Severity)
		assert.LessOrEqual(t, rank, lastRank)
		lastRank = rank
	}
	assert.Equal(t, "high", analysis.Alerts[0].Severity)
}

// History passed as nil must behave exactly like an empty slice.
func TestTimeNilHistory(t *testing.T) {
	detector := NewTimeAnomalyDetector(DefaultConfig())
	analysis := detector.DetectPatterns(uuid.New(), time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC), 500, transfer.History{})

	assert.Zero(t, analysis.RiskScore)
	assert.True(t, analysis.Patterns.BehavioralInsufficient)
}
