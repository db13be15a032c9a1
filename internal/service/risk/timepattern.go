package risk

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// TimeAnomalyDetector classifies a transfer's timestamp against temporal,
// behavioral, velocity and seasonal patterns. Stateless; safe for
// concurrent use.
type TimeAnomalyDetector struct {
	minBehavioral int
	minVelocity   int
}

func NewTimeAnomalyDetector(cfg Config) TimeAnomalyDetector {
	return TimeAnomalyDetector{
		minBehavioral: cfg.MinSamples.TimeBehavioral,
		minVelocity:   cfg.MinSamples.TimeVelocity,
	}
}

// Fixed-date holidays observed for seasonal flags (month, day).
var holidayDates = map[[2]int]bool{
	{1, 1}:   true, // New Year
	{1, 26}:  true, // Republic Day
	{8, 15}:  true, // Independence Day
	{10, 2}:  true, // Gandhi Jayanti
	{12, 25}: true, // Christmas
}

// DetectPatterns runs the four sub-analyses and merges their signals.
// Each sub-analysis writes only its own fields of TimePatterns.
func (d TimeAnomalyDetector) DetectPatterns(userID uuid.UUID, ts time.Time, amount float64, history transfer.History) TimeAnalysis {
	var p TimePatterns

	d.analyzeBasic(&p, ts, amount)
	d.analyzeBehavioral(&p, ts, history)
	d.analyzeVelocity(&p, ts, history)
	d.analyzeSeasonal(&p, ts, history)

	analysis := TimeAnalysis{Patterns: p}
	analysis.RiskScore, analysis.Reasons = d.scorePatterns(p, ts)
	analysis.Confidence = d.confidence(len(history), p)
	analysis.Alerts = d.alerts(p)

	return analysis
}

func (d TimeAnomalyDetector) analyzeBasic(p *TimePatterns, ts time.Time, amount float64) {
	hour := ts.Hour()
	day := ts.Weekday()

	p.LateNight = hour < 5
	p.EarlyMorning = hour >= 4 && hour < 7
	p.Overnight = hour >= 22 || hour < 3
	p.Weekend = day == time.Saturday || day == time.Sunday
	p.BusinessHours = !p.Weekend && hour >= 9 && hour < 17
	p.LunchWindow = hour >= 12 && hour < 14
	p.DinnerWindow = hour >= 19 && hour < 22

	offHours := hour < 9 || hour >= 17
	p.HighValueOffHours = amount > HighValueOffHoursAmount && offHours
	p.MediumValueLate = amount > MediumValueAmount && p.Overnight
	p.WeekendHighAmount = p.Weekend && amount > WeekendHighAmount
}

func (d TimeAnomalyDetector) analyzeBehavioral(p *TimePatterns, ts time.Time, history transfer.History) {
	if len(history) < d.minBehavioral {
		p.BehavioralInsufficient = true
		return
	}

	var hourCounts [24]int
	var dayCounts [7]int
	var minuteCounts [60]int
	for _, tx := range history {
		hourCounts[tx.Timestamp.Hour()]++
		dayCounts[tx.Timestamp.Weekday()]++
		minuteCounts[tx.Timestamp.Minute()]++
	}

	n := float64(len(history))
	expectedHour := n / 24
	expectedDay := n / 7

	hour := ts.Hour()
	day := ts.Weekday()

	p.FirstTimeHour = hourCounts[hour] == 0
	p.FirstTimeDay = dayCounts[day] == 0
	p.HourlyDeviation = math.Abs(float64(hourCounts[hour])-expectedHour) / expectedHour
	p.DailyDeviation = math.Abs(float64(dayCounts[day])-expectedDay) / expectedDay

	// Repeated exact-minute timing suggests scripted transfers.
	p.UnusualMinute = minuteCounts[ts.Minute()] >= 3
	p.RoundHour = ts.Minute() == 0
}

func (d TimeAnomalyDetector) analyzeVelocity(p *TimePatterns, ts time.Time, history transfer.History) {
	if len(history) < d.minVelocity {
		p.VelocityInsufficient = true
		return
	}

	recent := history.Within(ts, time.Hour)
	p.RecentCount = len(recent)
	p.RapidSuccession = len(recent) >= RapidSuccessionCount

	sorted := recent.Sorted()
	rapidPairs := 0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
		if gap <= BurstPairGapMinutes*time.Minute {
			rapidPairs++
		}
	}
	p.BurstActivity = rapidPairs >= BurstMinPairs

	risk := 0
	switch {
	case len(recent) >= 10:
		risk += 25
	case len(recent) >= 5:
		risk += 15
	}
	if rapidPairs >= 3 {
		risk += 10
	}
	p.VelocityRisk = clampScore(risk, MaxVelocityRiskScore)
}

func (d TimeAnomalyDetector) analyzeSeasonal(p *TimePatterns, ts time.Time, history transfer.History) {
	day := ts.Day()
	p.MonthEnd = day >= 25
	p.PaydayWindow = day <= 5 || (day >= 10 && day <= 12)
	p.Holiday = holidayDates[[2]int{int(ts.Month()), day}]

	if len(history) == 0 {
		return
	}
	weekendCount := 0
	for _, tx := range history {
		wd := tx.Timestamp.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			weekendCount++
		}
	}
	weekdayCount := len(history) - weekendCount
	// Per-day rates so a 2-day weekend compares fairly against 5 weekdays.
	weekendRate := float64(weekendCount) / 2
	weekdayRate := float64(weekdayCount) / 5
	if weekdayRate > 0 {
		p.WeekendSpendRatio = weekendRate / weekdayRate
	} else if weekendRate > 0 {
		p.WeekendSpendRatio = math.Inf(1)
	}
}

// scorePatterns sums the fixed point weight of every true signal. The sum
// is clamped to MaxTimeRiskScore so time alone contributes at most half of
// a full score.
func (d TimeAnomalyDetector) scorePatterns(p TimePatterns, ts time.Time) (int, []Reason) {
	var reasons []Reason
	score := 0

	add := func(code ReasonCode, points int, params map[string]interface{}) {
		score += points
		reasons = append(reasons, Reason{Code: code, Score: points, Params: params})
	}

	hour := ts.Hour()
	day := ts.Weekday().String()

	if p.LateNight {
		add(ReasonTimeLateNight, TimeLateNightPoints, map[string]interface{}{"hour": hour})
	}
	if p.Overnight {
		add(ReasonTimeOvernight, TimeOvernightPoints, map[string]interface{}{"hour": hour})
	}
	if p.EarlyMorning {
		add(ReasonTimeEarlyMorning, TimeEarlyMorningPoints, map[string]interface{}{"hour": hour})
	}
	if p.WeekendHighAmount {
		add(ReasonTimeWeekendHigh, TimeWeekendHighAmountPoints, map[string]interface{}{"day": day})
	}
	if p.HighValueOffHours {
		add(ReasonTimeHighValueOff, TimeHighValueOffHoursPoints, map[string]interface{}{"hour": hour})
	}
	if p.MediumValueLate {
		add(ReasonTimeMediumValueLate, TimeMediumValueLatePoints, map[string]interface{}{"hour": hour})
	}
	if p.FirstTimeHour {
		add(ReasonTimeFirstHour, TimeFirstHourPoints, map[string]interface{}{"hour": hour})
	}
	if p.FirstTimeDay {
		add(ReasonTimeFirstDay, TimeFirstDayPoints, map[string]interface{}{"day": day})
	}
	if !p.BehavioralInsufficient && p.HourlyDeviation > FrequencyDeviationThreshold {
		add(ReasonTimeHourDeviation, TimeHourlyDeviationPoints, map[string]interface{}{"hour": hour, "deviation": p.HourlyDeviation})
	}
	if !p.BehavioralInsufficient && p.DailyDeviation > FrequencyDeviationThreshold {
		add(ReasonTimeDayDeviation, TimeDailyDeviationPoints, map[string]interface{}{"day": day, "deviation": p.DailyDeviation})
	}
	if p.RapidSuccession {
		add(ReasonTimeRapidSuccession, TimeRapidSuccessionPoints, map[string]interface{}{"count": p.RecentCount})
	}
	if p.BurstActivity {
		add(ReasonTimeBurst, TimeBurstPoints, nil)
	}
	if p.UnusualMinute {
		add(ReasonTimeUnusualMinute, TimeUnusualMinutePoints, map[string]interface{}{"minute": ts.Minute()})
	}
	if p.RoundHour {
		add(ReasonTimeRoundHour, TimeRoundHourPoints, map[string]interface{}{"hour": hour})
	}

	return clampScore(score, MaxTimeRiskScore), reasons
}

func (d TimeAnomalyDetector) confidence(historyLen int, p TimePatterns) float64 {
	c := TimeConfidenceBase
	switch {
	case historyLen >= 50:
		c += TimeConfidenceLarge
	case historyLen >= 20:
		c += TimeConfidenceMid
	case historyLen >= 10:
		c += TimeConfidenceSmall
	}
	if p.BehavioralInsufficient || p.VelocityInsufficient {
		c /= 2
	}
	return math.Min(c, TimeConfidenceCap)
}

// alerts emits ordered user-facing alerts for the highest-salience signals.
// Alerts are text for the surrounding application, independent of score.
func (d TimeAnomalyDetector) alerts(p TimePatterns) []TimeAlert {
	var alerts []TimeAlert
	if p.BurstActivity {
		alerts = append(alerts, TimeAlert{
			Type:     "burst_activity",
			Message:  "Several transactions only minutes apart",
			Severity: "high",
		})
	}
	if p.RapidSuccession {
		alerts = append(alerts, TimeAlert{
			Type:     "rapid_succession",
			Message:  "Multiple transactions within the last hour",
			Severity: "high",
		})
	}
	if p.HighValueOffHours {
		alerts = append(alerts, TimeAlert{
			Type:     "high_value_off_hours",
			Message:  "Large transaction outside business hours",
			Severity: "high",
		})
	}
	if p.Overnight {
		alerts = append(alerts, TimeAlert{
			Type:     "overnight",
			Message:  "Transaction during overnight hours",
			Severity: "medium",
		})
	}
	if p.LateNight {
		alerts = append(alerts, TimeAlert{
			Type:     "late_night",
			Message:  "Transaction during late-night hours",
			Severity: "medium",
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Severity) > severityRank(alerts[j].Severity)
	})
	return alerts
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}
