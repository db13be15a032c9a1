package risk

import (
	"context"
	"log/slog"
	"math"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/errors"
)

// service merges the three detectors' outputs with list overrides into a
// bounded score and a decision. It holds configuration only; detectors are
// stateless, so assessments for different transfers may run in parallel.
type service struct {
	cfg       Config
	amount    AmountAnomalyDetector
	timing    TimeAnomalyDetector
	recipient RecipientProfiler
	lists     ListChecker
	logger    *slog.Logger
}

// NewService validates the injected configuration and builds the scoring
// service. An unusable threshold set is refused here, not at score time.
func NewService(cfg Config, lists ListChecker, logger *slog.Logger) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		cfg:       cfg,
		amount:    NewAmountAnomalyDetector(cfg),
		timing:    NewTimeAnomalyDetector(cfg),
		recipient: NewRecipientProfiler(cfg),
		lists:     lists,
		logger:    logger,
	}, nil
}

func (s *service) Assess(ctx context.Context, input AssessmentInput) (*RiskAssessment, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	amount, _ := input.Amount.Float64()

	// The three detectors are independent and order-insensitive.
	amountResult := s.amount.DetectAnomaly(amount, input.History)
	timeResult := s.timing.DetectPatterns(input.UserID, input.Timestamp, amount, input.History)
	profiles := s.recipient.BuildProfiles(input.History)
	recipientResult := s.recipient.DetectAnomaly(input.PayeeID, input.PayeeName, amount, input.Timestamp, profiles, len(input.History))

	w := s.cfg.Weights
	weighted := w.Amount*float64(amountResult.RiskScore) +
		w.Time*float64(timeResult.RiskScore) +
		w.Recipient*float64(recipientResult.RiskScore)
	score := clampScore(int(math.Round(weighted)), MaxRiskScore)

	assessment := &RiskAssessment{
		UserID:    input.UserID,
		RiskScore: score,
		SubScores: SubScores{
			Amount:    amountResult.RiskScore,
			Time:      timeResult.RiskScore,
			Recipient: recipientResult.RiskScore,
		},
		Confidence: s.combineConfidence(amountResult.Confidence, timeResult.Confidence, recipientResult.Confidence),
		Amount:     amountResult,
		Time:       timeResult,
		Recipient:  recipientResult,
	}

	reasons := make([]Reason, 0, len(amountResult.Reasons)+len(timeResult.Reasons)+len(recipientResult.Reasons)+2)
	reasons = append(reasons, amountResult.Reasons...)
	reasons = append(reasons, timeResult.Reasons...)
	reasons = append(reasons, recipientResult.Reasons...)

	// List hits are hard signals, not weighted points.
	blacklisted, whitelisted := s.checkLists(ctx, input.PayeeID)
	assessment.Blacklisted = blacklisted
	assessment.Whitelisted = whitelisted

	if blacklisted {
		assessment.Decision = DecisionBlock
		reasons = append(reasons, Reason{
			Code:   ReasonBlacklistedPayee,
			Score:  MaxRiskScore,
			Params: map[string]interface{}{"payee_id": input.PayeeID},
		})
		assessment.Reasons = sortReasons(reasons)
		return assessment, nil
	}

	switch {
	case amount < s.cfg.Thresholds.AutoApproveBelow:
		assessment.Decision = DecisionApprove
		reasons = append(reasons, Reason{
			Code:   ReasonAutoApproveSmallAmount,
			Params: map[string]interface{}{"amount": amount},
		})
	default:
		assessment.Decision = s.decide(score)
	}

	if whitelisted {
		reasons = append(reasons, Reason{
			Code:   ReasonWhitelistedPayee,
			Params: map[string]interface{}{"payee_id": input.PayeeID},
		})
		if assessment.Decision > DecisionWarn {
			assessment.Decision = DecisionWarn
		}
	}

	if assessment.Decision == DecisionDelay {
		assessment.HoldDuration = s.cfg.Thresholds.DelayHold
	}

	assessment.Reasons = sortReasons(reasons)
	return assessment, nil
}

// decide maps a score onto the decision ladder. Severity is non-decreasing
// in the score for any valid (monotonic) threshold set.
func (s *service) decide(score int) Decision {
	t := s.cfg.Thresholds
	switch {
	case score >= t.Block:
		return DecisionBlock
	case score >= t.Delay:
		return DecisionDelay
	case score >= t.Warn:
		return DecisionWarn
	default:
		return DecisionApprove
	}
}

// checkLists resolves both list memberships. Lookup failures degrade to
// "unknown" with a logged warning; they never default to a hit or a miss
// that blocks or approves silently.
func (s *service) checkLists(ctx context.Context, payeeID string) (blacklisted, whitelisted bool) {
	if s.lists == nil {
		return false, false
	}
	b, err := s.lists.IsBlacklisted(ctx, payeeID)
	if err != nil {
		s.logger.WarnContext(ctx, "blacklist lookup failed", "payee_id", payeeID, "error", err)
	} else {
		blacklisted = b
	}
	w, err := s.lists.IsWhitelisted(ctx, payeeID)
	if err != nil {
		s.logger.WarnContext(ctx, "whitelist lookup failed", "payee_id", payeeID, "error", err)
	} else {
		whitelisted = w
	}
	return blacklisted, whitelisted
}

// combineConfidence is the weight-proportional mean of the detector
// confidences, using the same weights as the score combination.
func (s *service) combineConfidence(amount, timing, recipient float64) float64 {
	w := s.cfg.Weights
	totalWeight := w.Amount + w.Time + w.Recipient
	if totalWeight == 0 {
		return 0
	}
	return (w.Amount*amount + w.Time*timing + w.Recipient*recipient) / totalWeight
}

func validateInput(input AssessmentInput) error {
	if !input.Amount.IsPositive() {
		return errors.NewValidationError("INVALID_AMOUNT", "amount must be positive")
	}
	if input.Timestamp.IsZero() {
		return errors.NewValidationError("INVALID_TIMESTAMP", "timestamp is required")
	}
	if input.PayeeID == "" {
		return errors.NewValidationError("MISSING_PAYEE", "payee id is required")
	}
	return nil
}
