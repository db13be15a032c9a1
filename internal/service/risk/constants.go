package risk

// Score bounds
const (
	// MaxRiskScore caps every sub-score and the aggregate.
	MaxRiskScore = 100

	// MaxTimeRiskScore caps the time detector: time signals alone may
	// contribute at most half of a full score.
	MaxTimeRiskScore = 50

	// MaxVelocityRiskScore caps the velocity sub-analysis.
	MaxVelocityRiskScore = 35
)

// Amount detector score bands
const (
	AmountSigmaExtremePoints = 30 // deviation > 3 sigma
	AmountSigmaHighPoints    = 15 // deviation > 2 sigma
	AmountSigmaMildPoints    = 5  // deviation > 1.5 sigma

	AmountRangeDoublePoints = 25 // > 2x typical-range max
	AmountRangeHighPoints   = 15 // > 1.5x typical-range max
	AmountRangeOverPoints   = 10 // above typical-range max

	AmountMean10xPoints = 40
	AmountMean5xPoints  = 25
	AmountMean3xPoints  = 15

	AmountLowOutlierPoints = 10
)

// Time signal weights
const (
	TimeLateNightPoints         = 20
	TimeOvernightPoints         = 25
	TimeEarlyMorningPoints      = 15
	TimeWeekendHighAmountPoints = 15
	TimeHighValueOffHoursPoints = 30
	TimeMediumValueLatePoints   = 20
	TimeFirstHourPoints         = 10
	TimeFirstDayPoints          = 15
	TimeHourlyDeviationPoints   = 25
	TimeDailyDeviationPoints    = 20
	TimeRapidSuccessionPoints   = 25
	TimeBurstPoints             = 30
	TimeUnusualMinutePoints     = 15
	TimeRoundHourPoints         = 10
)

// Time analysis thresholds
const (
	HighValueOffHoursAmount = 50000
	MediumValueAmount       = 10000
	WeekendHighAmount       = 20000

	FrequencyDeviationThreshold = 0.8

	RapidSuccessionCount = 3
	BurstPairGapMinutes  = 5
	BurstMinPairs        = 2
)

// Recipient detector scores
const (
	NewPayeePoints          = 25
	RarePayeePoints         = 15
	PayeeDeviation3xPoints  = 20
	PayeeDeviation2xPoints  = 15
	PayeeDeviationMildPoints = 10
	PayeeHighAmountNewPoints = 20

	PayeeHighAmountThreshold = 10000

	PayeeRareRatioPoints     = 20 // frequency ratio < 1%
	PayeeUncommonRatioPoints = 10 // frequency ratio < 5%
	PayeeMaxOver50kPoints    = 15
	PayeeMaxOver10kPoints    = 10
	PayeeVariabilityPoints   = 10 // coefficient of variation > 1
	PayeeRecentBurstPoints   = 15 // > 2 transactions in trailing 24h

	TypicalHourShareOfPeak = 0.20
)

// Confidence shaping for the time detector
const (
	TimeConfidenceBase  = 0.5
	TimeConfidenceLarge = 0.3 // history >= 50
	TimeConfidenceMid   = 0.2 // history >= 20
	TimeConfidenceSmall = 0.1 // history >= 10
	TimeConfidenceCap   = 0.95
)
