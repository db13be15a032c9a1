package risk

import (
	"context"

	"github.com/google/uuid"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// Service is the single entry point of the risk-scoring core.
type Service interface {
	// Assess scores one transfer request against the user's history.
	Assess(ctx context.Context, input AssessmentInput) (*RiskAssessment, error)
}

// ListChecker resolves blacklist/whitelist membership for a payee. List
// storage is a collaborator responsibility; the core only reads.
type ListChecker interface {
	IsBlacklisted(ctx context.Context, payeeID string) (bool, error)
	IsWhitelisted(ctx context.Context, payeeID string) (bool, error)
}

// HistoryProvider fetches one user's transaction history. It is consumed
// by the request-handling layer, which resolves history before invoking
// the core.
type HistoryProvider interface {
	GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) (transfer.History, error)
}
