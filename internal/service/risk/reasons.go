package risk

import (
	"fmt"
	"sort"
)

// ReasonCode is a closed enumeration of everything the core can flag.
// Detectors emit codes plus structured parameters; display text is
// rendered at the presentation boundary, never matched on.
type ReasonCode string

const (
	ReasonInsufficientAmountHistory    ReasonCode = "amount_insufficient_history"
	ReasonAmountSigmaOutlier           ReasonCode = "amount_sigma_outlier"
	ReasonAmountAboveTypicalRange      ReasonCode = "amount_above_typical_range"
	ReasonAmountBelowTypicalRange      ReasonCode = "amount_below_typical_range"
	ReasonAmountMeanMultiple           ReasonCode = "amount_mean_multiple"

	ReasonTimeLateNight       ReasonCode = "time_late_night"
	ReasonTimeOvernight       ReasonCode = "time_overnight"
	ReasonTimeEarlyMorning    ReasonCode = "time_early_morning"
	ReasonTimeWeekendHigh     ReasonCode = "time_weekend_high_amount"
	ReasonTimeHighValueOff    ReasonCode = "time_high_value_off_hours"
	ReasonTimeMediumValueLate ReasonCode = "time_medium_value_late"
	ReasonTimeFirstHour       ReasonCode = "time_first_time_hour"
	ReasonTimeFirstDay        ReasonCode = "time_first_time_day"
	ReasonTimeHourDeviation   ReasonCode = "time_hour_deviation"
	ReasonTimeDayDeviation    ReasonCode = "time_day_deviation"
	ReasonTimeRapidSuccession ReasonCode = "time_rapid_succession"
	ReasonTimeBurst           ReasonCode = "time_burst_activity"
	ReasonTimeUnusualMinute   ReasonCode = "time_unusual_minute"
	ReasonTimeRoundHour       ReasonCode = "time_round_hour"

	ReasonNewPayee                   ReasonCode = "recipient_new_payee"
	ReasonRarePayee                  ReasonCode = "recipient_rare_payee"
	ReasonPayeeAmountDeviation       ReasonCode = "recipient_amount_deviation"
	ReasonPayeeAboveMax              ReasonCode = "recipient_above_historical_max"
	ReasonPayeeUnusualHour           ReasonCode = "recipient_unusual_hour"
	ReasonPayeeHighAmountUnfamiliar  ReasonCode = "recipient_high_amount_unfamiliar"
	ReasonInsufficientPayeeHistory   ReasonCode = "recipient_insufficient_history"

	ReasonBlacklistedPayee ReasonCode = "list_blacklisted_payee"
	ReasonWhitelistedPayee ReasonCode = "list_whitelisted_payee"

	ReasonAutoApproveSmallAmount ReasonCode = "auto_approve_small_amount"
)

// Reason is one scored finding. Score is the points the finding contributed
// to its detector's sub-total; Params carry enough context to reconstruct
// the triggering rule for audit.
type Reason struct {
	Code   ReasonCode             `json:"code"`
	Score  int                    `json:"score"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// sortReasons orders reasons by descending contribution, stable so that
// detector emission order breaks ties deterministically.
func sortReasons(reasons []Reason) []Reason {
	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Score > reasons[j].Score
	})
	return reasons
}

// Render produces display text for a reason. This is the presentation
// boundary: the scoring math never consults these strings.
func (r Reason) Render() string {
	p := r.Params
	switch r.Code {
	case ReasonInsufficientAmountHistory:
		return fmt.Sprintf("Not enough transaction history to profile amounts (%v of %v needed)", p["count"], p["min"])
	case ReasonAmountSigmaOutlier:
		return fmt.Sprintf("Amount is %.1f standard deviations from your usual spending", p["deviation"])
	case ReasonAmountAboveTypicalRange:
		return fmt.Sprintf("Amount %.2f is above your typical range (up to %.2f)", p["amount"], p["typical_max"])
	case ReasonAmountBelowTypicalRange:
		return fmt.Sprintf("Amount %.2f is unusually small for your account", p["amount"])
	case ReasonAmountMeanMultiple:
		return fmt.Sprintf("Amount is %.1fx your average transaction", p["multiple"])
	case ReasonTimeLateNight:
		return fmt.Sprintf("Transaction at %02d:00 falls in the late-night window", p["hour"])
	case ReasonTimeOvernight:
		return fmt.Sprintf("Transaction at %02d:00 falls in the overnight window", p["hour"])
	case ReasonTimeEarlyMorning:
		return fmt.Sprintf("Transaction at %02d:00 falls in the early-morning window", p["hour"])
	case ReasonTimeWeekendHigh:
		return "High-value transaction on a weekend"
	case ReasonTimeHighValueOff:
		return "High-value transaction outside business hours"
	case ReasonTimeMediumValueLate:
		return "Sizeable transaction during late hours"
	case ReasonTimeFirstHour:
		return fmt.Sprintf("First transaction ever at hour %02d", p["hour"])
	case ReasonTimeFirstDay:
		return fmt.Sprintf("First transaction ever on a %v", p["day"])
	case ReasonTimeHourDeviation:
		return fmt.Sprintf("Activity at hour %02d deviates %.0f%% from your usual pattern", p["hour"], mulFloat(p["deviation"], 100))
	case ReasonTimeDayDeviation:
		return fmt.Sprintf("Activity on %v deviates %.0f%% from your usual pattern", p["day"], mulFloat(p["deviation"], 100))
	case ReasonTimeRapidSuccession:
		return fmt.Sprintf("%v transactions within the last hour", p["count"])
	case ReasonTimeBurst:
		return "Burst of transactions only minutes apart"
	case ReasonTimeUnusualMinute:
		return "Transactions repeatedly land on the same minute, which suggests automation"
	case ReasonTimeRoundHour:
		return "Transaction at the exact top of the hour"
	case ReasonNewPayee:
		return fmt.Sprintf("First transfer to payee %v", p["payee_id"])
	case ReasonRarePayee:
		return fmt.Sprintf("Payee %v is rarely used (%v previous transfers)", p["payee_id"], p["count"])
	case ReasonPayeeAmountDeviation:
		return fmt.Sprintf("Amount deviates %.1fx from the average sent to payee %v", p["deviation"], p["payee_id"])
	case ReasonPayeeAboveMax:
		return fmt.Sprintf("Amount exceeds the most ever sent to payee %v (%.2f)", p["payee_id"], p["max"])
	case ReasonPayeeUnusualHour:
		return fmt.Sprintf("Hour %02d is outside the usual hours for payee %v", p["hour"], p["payee_id"])
	case ReasonPayeeHighAmountUnfamiliar:
		return "Large amount to an unfamiliar payee"
	case ReasonInsufficientPayeeHistory:
		return "Not enough history to profile this payee"
	case ReasonBlacklistedPayee:
		return fmt.Sprintf("Payee %v is blacklisted", p["payee_id"])
	case ReasonWhitelistedPayee:
		return fmt.Sprintf("Payee %v is whitelisted; escalation suppressed", p["payee_id"])
	case ReasonAutoApproveSmallAmount:
		return fmt.Sprintf("Amount %.2f is below the review floor", p["amount"])
	default:
		return string(r.Code)
	}
}

func mulFloat(v interface{}, by float64) float64 {
	f, _ := v.(float64)
	return f * by
}
