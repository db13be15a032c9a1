package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// Decision is the enforcement outcome of a risk assessment. Severity is
// strictly increasing: the decision is a non-decreasing step function of
// the score for fixed thresholds.
type Decision int

const (
	DecisionApprove Decision = iota
	DecisionWarn
	DecisionDelay
	DecisionBlock
)

func (d Decision) String() string {
	switch d {
	case DecisionApprove:
		return "APPROVE"
	case DecisionWarn:
		return "WARN"
	case DecisionDelay:
		return "DELAY"
	case DecisionBlock:
		return "BLOCK"
	default:
		return "UNKNOWN"
	}
}

// AssessmentInput carries one transfer request plus the user's full
// history, resolved by the caller before invocation. The core performs
// no I/O of its own.
type AssessmentInput struct {
	UserID    uuid.UUID
	Amount    decimal.Decimal
	Timestamp time.Time
	PayeeID   string
	PayeeName string
	History   transfer.History
}

// SubScores are each detector's pre-clamped risk contribution before
// weighting.
type SubScores struct {
	Amount    int `json:"amount"`
	Time      int `json:"time"`
	Recipient int `json:"recipient"`
}

// RiskAssessment is the final output of one scoring call.
type RiskAssessment struct {
	UserID    uuid.UUID `json:"user_id"`
	RiskScore int       `json:"risk_score"` // 0-100
	Decision  Decision  `json:"decision"`

	// HoldDuration is non-zero only for DELAY decisions. The core performs
	// no waiting itself; holds belong to the caller's workflow.
	HoldDuration time.Duration `json:"hold_duration,omitempty"`

	// Reasons are ordered highest contribution first.
	Reasons []Reason `json:"reasons"`

	SubScores  SubScores `json:"sub_scores"`
	Confidence float64   `json:"confidence"`

	Blacklisted bool `json:"blacklisted"`
	Whitelisted bool `json:"whitelisted"`

	// Per-detector detail, kept for audit trails.
	Amount    AmountAnomaly    `json:"amount_detail"`
	Time      TimeAnalysis     `json:"time_detail"`
	Recipient RecipientAnomaly `json:"recipient_detail"`
}

// AmountProfile is the per-call statistical profile of a user's amounts.
type AmountProfile struct {
	SampleCount   int     `json:"sample_count"`
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	StdDev        float64 `json:"std_dev"`
	TypicalMin    float64 `json:"typical_min"`
	TypicalMax    float64 `json:"typical_max"`
	Confidence    float64 `json:"confidence"`
	HasEnoughData bool    `json:"has_enough_data"`
}

// AmountAnomaly is the amount detector's output for one transfer.
type AmountAnomaly struct {
	IsAnomalous bool    `json:"is_anomalous"`
	Confidence  float64 `json:"confidence"`

	// Deviation is the sigma-distance |amount - mean| / stddev.
	Deviation float64 `json:"deviation"`

	RiskScore int          `json:"risk_score"`
	Reasons   []Reason     `json:"reasons"`
	Profile   AmountProfile `json:"profile"`
}

// TimePatterns is the combined signal set of the four time sub-analyses.
// It is a closed struct rather than a merged map so that a colliding
// signal name is a compile error, not a silent overwrite.
type TimePatterns struct {
	// Calendar/clock signals
	LateNight     bool `json:"late_night"`
	EarlyMorning  bool `json:"early_morning"`
	Overnight     bool `json:"overnight"`
	Weekend       bool `json:"weekend"`
	BusinessHours bool `json:"business_hours"`
	LunchWindow   bool `json:"lunch_window"`
	DinnerWindow  bool `json:"dinner_window"`

	// Amount x time correlations
	HighValueOffHours bool `json:"high_value_off_hours"`
	MediumValueLate   bool `json:"medium_value_late"`
	WeekendHighAmount bool `json:"weekend_high_amount"`

	// Behavioral signals
	FirstTimeHour   bool    `json:"first_time_hour"`
	FirstTimeDay    bool    `json:"first_time_day"`
	HourlyDeviation float64 `json:"hourly_deviation"`
	DailyDeviation  float64 `json:"daily_deviation"`
	UnusualMinute   bool    `json:"unusual_minute"`
	RoundHour       bool    `json:"round_hour"`

	// Velocity signals
	RecentCount     int  `json:"recent_count"` // transactions in trailing hour
	RapidSuccession bool `json:"rapid_succession"`
	BurstActivity   bool `json:"burst_activity"`
	VelocityRisk    int  `json:"velocity_risk"`

	// Seasonal signals
	MonthEnd          bool    `json:"month_end"`
	PaydayWindow      bool    `json:"payday_window"`
	Holiday           bool    `json:"holiday"`
	WeekendSpendRatio float64 `json:"weekend_spend_ratio"`

	BehavioralInsufficient bool `json:"behavioral_insufficient"`
	VelocityInsufficient   bool `json:"velocity_insufficient"`
}

// TimeAlert is user-facing text for a high-salience time signal,
// independent of the numeric score.
type TimeAlert struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// TimeAnalysis is the time detector's output for one transfer.
type TimeAnalysis struct {
	Patterns   TimePatterns `json:"patterns"`
	RiskScore  int          `json:"risk_score"`
	Confidence float64      `json:"confidence"`
	Alerts     []TimeAlert  `json:"alerts"`
	Reasons    []Reason     `json:"reasons"`
}

// RecipientCategory labels a payee by frequency and typical size.
type RecipientCategory string

const (
	CategoryRegularSmall  RecipientCategory = "regular_small"
	CategoryRegularMedium RecipientCategory = "regular_medium"
	CategoryRegularLarge  RecipientCategory = "regular_large"
	CategoryOneTime       RecipientCategory = "one_time"
	CategoryOccasional    RecipientCategory = "occasional"
	CategoryUnknown       RecipientCategory = "unknown"
)

// RecipientProfile is the derived behavioral profile of one payee.
type RecipientProfile struct {
	PayeeID   string `json:"payee_id"`
	PayeeName string `json:"payee_name,omitempty"`

	TransactionCount int     `json:"transaction_count"`
	TotalAmount      float64 `json:"total_amount"`
	AvgAmount        float64 `json:"avg_amount"`
	MinAmount        float64 `json:"min_amount"`
	MaxAmount        float64 `json:"max_amount"`

	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`

	PerMonth       float64 `json:"per_month"`
	AvgDaysBetween float64 `json:"avg_days_between"`

	// Regularity is 1 minus the normalized interval variability; higher
	// means more periodic. Only computed with >= 3 transactions.
	Regularity float64 `json:"regularity"`

	// TypicalHours are hours whose count reaches 20% of the peak hour.
	TypicalHours map[int]bool `json:"typical_hours"`

	RiskScore       int               `json:"risk_score"`
	IsFrequentPayee bool              `json:"is_frequent_payee"`
	Category        RecipientCategory `json:"category"`
}

// RecipientAnomaly is the recipient detector's output for one transfer.
type RecipientAnomaly struct {
	IsUnusual     bool    `json:"is_unusual"`
	IsNewPayee    bool    `json:"is_new_payee"`
	HasEnoughData bool    `json:"has_enough_data"`
	Confidence    float64 `json:"confidence"`

	// Deviation is |amount - avgAmount| / avgAmount for known payees.
	Deviation float64 `json:"deviation"`

	RiskScore int      `json:"risk_score"`
	Reasons   []Reason `json:"reasons"`

	Profile *RecipientProfile `json:"profile,omitempty"`
}
