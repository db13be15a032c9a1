package rest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssessmentRequest is the wire form of a transfer to be scored. The
// timestamp is optional; an absent one means "now".
type AssessmentRequest struct {
	UserID    uuid.UUID       `json:"user_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
	PayeeID   string          `json:"payee_id" validate:"required,max=128"`
	PayeeName string          `json:"payee_name,omitempty" validate:"max=256"`
}
