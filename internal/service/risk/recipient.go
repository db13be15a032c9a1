package risk

import (
	"math"
	"time"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// RecipientProfiler builds per-payee behavioral profiles from history and
// flags anomalous recipients. Stateless; profiles are recomputed per call.
type RecipientProfiler struct {
	minSamples int
}

func NewRecipientProfiler(cfg Config) RecipientProfiler {
	return RecipientProfiler{minSamples: cfg.MinSamples.Recipient}
}

// BuildProfiles groups the history by payee and derives each profile.
// The recent-burst window is measured from the newest timestamp in the
// history, since the core takes no clock of its own.
func (r RecipientProfiler) BuildProfiles(history transfer.History) map[string]*RecipientProfile {
	profiles := make(map[string]*RecipientProfile)
	if len(history) == 0 {
		return profiles
	}

	total := len(history)
	now := history.Latest()

	for payeeID, group := range history.ByPayee() {
		profiles[payeeID] = r.buildProfile(payeeID, group, total, now)
	}
	return profiles
}

func (r RecipientProfiler) buildProfile(payeeID string, group transfer.History, totalHistory int, now time.Time) *RecipientProfile {
	sorted := group.Sorted()
	count := len(sorted)

	p := &RecipientProfile{
		PayeeID:          payeeID,
		PayeeName:        sorted[count-1].PayeeName,
		TransactionCount: count,
		FirstSeen:        sorted[0].Timestamp,
		LastSeen:         sorted[count-1].Timestamp,
		MinAmount:        math.Inf(1),
		TypicalHours:     make(map[int]bool),
	}

	var hourCounts [24]int
	for _, tx := range sorted {
		a := tx.AmountFloat()
		p.TotalAmount += a
		if a < p.MinAmount {
			p.MinAmount = a
		}
		if a > p.MaxAmount {
			p.MaxAmount = a
		}
		hourCounts[tx.Timestamp.Hour()]++
	}
	p.AvgAmount = p.TotalAmount / float64(count)

	spanDays := p.LastSeen.Sub(p.FirstSeen).Hours() / 24
	p.PerMonth = float64(count) * 30 / math.Max(spanDays, 1)
	if count > 1 {
		p.AvgDaysBetween = spanDays / float64(count-1)
	}

	p.Regularity = intervalRegularity(sorted)

	peak := 0
	for _, c := range hourCounts {
		if c > peak {
			peak = c
		}
	}
	for h, c := range hourCounts {
		if peak > 0 && float64(c) >= TypicalHourShareOfPeak*float64(peak) && c > 0 {
			p.TypicalHours[h] = true
		}
	}

	p.IsFrequentPayee = count >= frequentThreshold(totalHistory)
	p.Category = categorize(p)
	p.RiskScore = r.profileRisk(p, group, totalHistory, now)

	return p
}

// intervalRegularity is 1 minus the normalized variability of the gaps
// between a payee's transactions; only meaningful with >= 3 transactions.
func intervalRegularity(sorted transfer.History) float64 {
	if len(sorted) < 3 {
		return 0
	}
	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Hours())
	}
	var sum float64
	for _, iv := range intervals {
		sum += iv
	}
	mean := sum / float64(len(intervals))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, iv := range intervals {
		diff := iv - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(len(intervals)))
	return math.Max(0, 1-stddev/mean)
}

func frequentThreshold(totalHistory int) int {
	tenth := int(math.Ceil(0.1 * float64(totalHistory)))
	if tenth < 3 {
		return 3
	}
	return tenth
}

func categorize(p *RecipientProfile) RecipientCategory {
	switch {
	case p.TransactionCount == 1:
		return CategoryOneTime
	case p.IsFrequentPayee && p.AvgAmount < 1000:
		return CategoryRegularSmall
	case p.IsFrequentPayee && p.AvgAmount < 10000:
		return CategoryRegularMedium
	case p.IsFrequentPayee:
		return CategoryRegularLarge
	case p.TransactionCount > 1:
		return CategoryOccasional
	default:
		return CategoryUnknown
	}
}

// profileRisk is the payee's standing 0-100 risk score, independent of any
// incoming transfer.
func (r RecipientProfiler) profileRisk(p *RecipientProfile, group transfer.History, totalHistory int, now time.Time) int {
	score := 0

	ratio := float64(p.TransactionCount) / float64(totalHistory)
	switch {
	case ratio < 0.01:
		score += PayeeRareRatioPoints
	case ratio < 0.05:
		score += PayeeUncommonRatioPoints
	}

	switch {
	case p.MaxAmount > 50000:
		score += PayeeMaxOver50kPoints
	case p.MaxAmount > 10000:
		score += PayeeMaxOver10kPoints
	}

	if p.AvgAmount > 0 && p.TransactionCount > 1 {
		var variance float64
		for _, tx := range group {
			diff := tx.AmountFloat() - p.AvgAmount
			variance += diff * diff
		}
		stddev := math.Sqrt(variance / float64(p.TransactionCount))
		if stddev/p.AvgAmount > 1 {
			score += PayeeVariabilityPoints
		}
	}

	if len(group.Within(now, 24*time.Hour)) > 2 {
		score += PayeeRecentBurstPoints
	}

	return clampScore(score, MaxRiskScore)
}

// DetectAnomaly scores an incoming transfer against the payee profiles.
func (r RecipientProfiler) DetectAnomaly(payeeID, payeeName string, amount float64, ts time.Time, profiles map[string]*RecipientProfile, historyLen int) RecipientAnomaly {
	profile, known := profiles[payeeID]

	if !known {
		result := RecipientAnomaly{
			IsNewPayee:    true,
			HasEnoughData: historyLen >= r.minSamples,
			Confidence:    1,
			RiskScore:     NewPayeePoints,
			Reasons: []Reason{{
				Code:   ReasonNewPayee,
				Score:  NewPayeePoints,
				Params: map[string]interface{}{"payee_id": payeeID, "payee_name": payeeName},
			}},
		}
		// "Never seen this payee" is direct evidence, so the fixed
		// contribution stands even on short histories; the unusual flag
		// is only asserted once history clears the minimum.
		result.IsUnusual = result.HasEnoughData
		if amount > PayeeHighAmountThreshold {
			result.RiskScore = clampScore(result.RiskScore+PayeeHighAmountNewPoints, MaxRiskScore)
			result.Reasons = append(result.Reasons, Reason{
				Code:   ReasonPayeeHighAmountUnfamiliar,
				Score:  PayeeHighAmountNewPoints,
				Params: map[string]interface{}{"amount": amount},
			})
		}
		result.Reasons = sortReasons(result.Reasons)
		return result
	}

	if historyLen < r.minSamples {
		// Starved profiles never produce deviation-based positives.
		return RecipientAnomaly{
			Profile: profile,
			Reasons: []Reason{{
				Code:   ReasonInsufficientPayeeHistory,
				Params: map[string]interface{}{"count": historyLen, "min": r.minSamples},
			}},
		}
	}

	result := RecipientAnomaly{
		HasEnoughData: true,
		Profile:       profile,
		Confidence:    math.Min(1, float64(profile.TransactionCount)/10),
	}

	if profile.AvgAmount > 0 {
		result.Deviation = math.Abs(amount-profile.AvgAmount) / profile.AvgAmount
	}

	score := 0

	rare := !profile.IsFrequentPayee
	if rare {
		score += RarePayeePoints
		result.Reasons = append(result.Reasons, Reason{
			Code:   ReasonRarePayee,
			Score:  RarePayeePoints,
			Params: map[string]interface{}{"payee_id": payeeID, "count": profile.TransactionCount},
		})
	}

	if result.Deviation > 2 {
		result.IsUnusual = true
	}
	if amount > 1.5*profile.MaxAmount {
		result.IsUnusual = true
		result.Reasons = append(result.Reasons, Reason{
			Code:   ReasonPayeeAboveMax,
			Score:  0,
			Params: map[string]interface{}{"payee_id": payeeID, "amount": amount, "max": profile.MaxAmount},
		})
	}

	var devPoints int
	switch {
	case result.Deviation > 3:
		devPoints = PayeeDeviation3xPoints
	case result.Deviation > 2:
		devPoints = PayeeDeviation2xPoints
	case result.Deviation > 1.5:
		devPoints = PayeeDeviationMildPoints
	}
	if devPoints > 0 {
		score += devPoints
		result.Reasons = append(result.Reasons, Reason{
			Code:  ReasonPayeeAmountDeviation,
			Score: devPoints,
			Params: map[string]interface{}{
				"payee_id":  payeeID,
				"deviation": result.Deviation,
				"avg":       profile.AvgAmount,
			},
		})
	}

	// Off-hours for this payee: appended, never replacing earlier reasons,
	// and only judged when the typical-hours set is non-empty.
	if len(profile.TypicalHours) > 0 && !profile.TypicalHours[ts.Hour()] {
		result.IsUnusual = true
		result.Reasons = append(result.Reasons, Reason{
			Code:   ReasonPayeeUnusualHour,
			Score:  0,
			Params: map[string]interface{}{"payee_id": payeeID, "hour": ts.Hour()},
		})
	}

	if rare && amount > PayeeHighAmountThreshold {
		score += PayeeHighAmountNewPoints
		result.Reasons = append(result.Reasons, Reason{
			Code:   ReasonPayeeHighAmountUnfamiliar,
			Score:  PayeeHighAmountNewPoints,
			Params: map[string]interface{}{"amount": amount},
		})
	}

	result.RiskScore = clampScore(score, MaxRiskScore)
	result.Reasons = sortReasons(result.Reasons)
	return result
}
