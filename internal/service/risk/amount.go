package risk

import (
	"math"
	"sort"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// AmountAnomalyDetector profiles a user's historical amounts and flags
// deviation. It is a stateless value type: every method is a pure function
// of its arguments, so detector instances are safe to share across calls.
type AmountAnomalyDetector struct {
	minSamples int
	ceiling    float64 // mean-multiple absolute rule
}

func NewAmountAnomalyDetector(cfg Config) AmountAnomalyDetector {
	return AmountAnomalyDetector{
		minSamples: cfg.MinSamples.Amount,
		ceiling:    cfg.MeanMultipleCeiling,
	}
}

// AnalyzePatterns builds the statistical amount profile from history.
func (d AmountAnomalyDetector) AnalyzePatterns(history transfer.History) AmountProfile {
	amounts := history.Amounts()
	n := len(amounts)

	profile := AmountProfile{SampleCount: n}
	if n < d.minSamples {
		return profile
	}

	sort.Float64s(amounts)

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(n)

	var median float64
	if n%2 == 0 {
		median = (amounts[n/2-1] + amounts[n/2]) / 2
	} else {
		median = amounts[n/2]
	}

	// Population standard deviation.
	var variance float64
	for _, a := range amounts {
		diff := a - mean
		variance += diff * diff
	}
	stddev := math.Sqrt(variance / float64(n))

	profile.Mean = mean
	profile.Median = median
	profile.StdDev = stddev
	profile.TypicalMin = math.Max(0, mean-2*stddev)
	profile.TypicalMax = mean + 2*stddev
	profile.HasEnoughData = true

	// Confidence rises with sample count and falls with relative
	// variability (coefficient of variation).
	sampleFactor := math.Min(float64(n)/50, 1)
	variability := 0.0
	if mean > 0 {
		variability = math.Min(stddev/mean, 1)
	}
	profile.Confidence = sampleFactor * (1 - variability)

	return profile
}

// DetectAnomaly scores a single amount against the user's profile.
func (d AmountAnomalyDetector) DetectAnomaly(amount float64, history transfer.History) AmountAnomaly {
	profile := d.AnalyzePatterns(history)

	if !profile.HasEnoughData {
		return AmountAnomaly{
			Profile: profile,
			Reasons: []Reason{{
				Code: ReasonInsufficientAmountHistory,
				Params: map[string]interface{}{
					"count": profile.SampleCount,
					"min":   d.minSamples,
				},
			}},
		}
	}

	var deviation float64
	if profile.StdDev > 0 {
		deviation = math.Abs(amount-profile.Mean) / profile.StdDev
	}

	result := AmountAnomaly{
		Confidence: profile.Confidence,
		Deviation:  deviation,
		Profile:    profile,
	}

	// The four anomaly rules, evaluated independently and OR-combined.
	// The primary reason comes from the first that fires, in this order.
	sigmaOutlier := deviation > 3
	aboveRange := amount > profile.TypicalMax
	lowOutlier := amount < profile.TypicalMin && deviation > 2
	meanMultiple := profile.Mean > 0 && amount > d.ceiling*profile.Mean

	result.IsAnomalous = sigmaOutlier || aboveRange || lowOutlier || meanMultiple

	score := 0

	switch {
	case deviation > 3:
		score += AmountSigmaExtremePoints
	case deviation > 2:
		score += AmountSigmaHighPoints
	case deviation > 1.5:
		score += AmountSigmaMildPoints
	}

	if aboveRange {
		ratio := amount / profile.TypicalMax
		switch {
		case ratio > 2:
			score += AmountRangeDoublePoints
		case ratio > 1.5:
			score += AmountRangeHighPoints
		default:
			score += AmountRangeOverPoints
		}
	}

	if profile.Mean > 0 {
		multiple := amount / profile.Mean
		switch {
		case multiple > 10:
			score += AmountMean10xPoints
		case multiple > 5:
			score += AmountMean5xPoints
		case multiple > 3:
			score += AmountMean3xPoints
		}
	}

	if lowOutlier {
		score += AmountLowOutlierPoints
	}

	result.RiskScore = clampScore(score, MaxRiskScore)

	if sigmaOutlier {
		result.Reasons = append(result.Reasons, Reason{
			Code:  ReasonAmountSigmaOutlier,
			Score: result.RiskScore,
			Params: map[string]interface{}{
				"deviation": deviation,
				"amount":    amount,
				"mean":      profile.Mean,
			},
		})
	} else if aboveRange {
		result.Reasons = append(result.Reasons, Reason{
			Code:  ReasonAmountAboveTypicalRange,
			Score: result.RiskScore,
			Params: map[string]interface{}{
				"amount":      amount,
				"typical_max": profile.TypicalMax,
			},
		})
	} else if lowOutlier {
		result.Reasons = append(result.Reasons, Reason{
			Code:  ReasonAmountBelowTypicalRange,
			Score: result.RiskScore,
			Params: map[string]interface{}{
				"amount":      amount,
				"typical_min": profile.TypicalMin,
				"deviation":   deviation,
			},
		})
	} else if meanMultiple {
		result.Reasons = append(result.Reasons, Reason{
			Code:  ReasonAmountMeanMultiple,
			Score: result.RiskScore,
			Params: map[string]interface{}{
				"amount":   amount,
				"multiple": amount / profile.Mean,
				"ceiling":  d.ceiling,
			},
		})
	}

	return result
}

func clampScore(score, max int) int {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}
