package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/paysentinel/transfer-risk-backend/internal/service/risk"
)

// AssessmentResponse is the external view of a risk assessment. Reason
// codes are rendered to text here, at the presentation boundary; the core
// never formats strings.
type AssessmentResponse struct {
	UserID       uuid.UUID        `json:"user_id"`
	RiskScore    int              `json:"risk_score"`
	Decision     string           `json:"decision"`
	HoldDuration string           `json:"hold_duration,omitempty"`
	Confidence   float64          `json:"confidence"`
	SubScores    SubScoreResponse `json:"sub_scores"`
	Reasons      []ReasonResponse `json:"reasons"`
	Alerts       []AlertResponse  `json:"alerts,omitempty"`
	Blacklisted  bool             `json:"blacklisted"`
	Whitelisted  bool             `json:"whitelisted"`
	AssessedAt   time.Time        `json:"assessed_at"`
}

type SubScoreResponse struct {
	Amount    int `json:"amount"`
	Time      int `json:"time"`
	Recipient int `json:"recipient"`
}

type ReasonResponse struct {
	Code    string `json:"code"`
	Score   int    `json:"score"`
	Message string `json:"message"`
}

type AlertResponse struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAssessmentResponse(a *risk.RiskAssessment) AssessmentResponse {
	resp := AssessmentResponse{
		UserID:     a.UserID,
		RiskScore:  a.RiskScore,
		Decision:   a.Decision.String(),
		Confidence: a.Confidence,
		SubScores: SubScoreResponse{
			Amount:    a.SubScores.Amount,
			Time:      a.SubScores.Time,
			Recipient: a.SubScores.Recipient,
		},
		Reasons:     make([]ReasonResponse, 0, len(a.Reasons)),
		Blacklisted: a.Blacklisted,
		Whitelisted: a.Whitelisted,
		AssessedAt:  time.Now().UTC(),
	}
	if a.HoldDuration > 0 {
		resp.HoldDuration = a.HoldDuration.String()
	}
	for _, r := range a.Reasons {
		resp.Reasons = append(resp.Reasons, ReasonResponse{
			Code:    string(r.Code),
			Score:   r.Score,
			Message: r.Render(),
		})
	}
	for _, al := range a.Time.Alerts {
		resp.Alerts = append(resp.Alerts, AlertResponse{
			Type:     al.Type,
			Message:  al.Message,
			Severity: al.Severity,
		})
	}
	return resp
}
