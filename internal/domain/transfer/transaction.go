package transfer

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/errors"
)

// Transaction is a single funds transfer as seen by the risk core.
// Instances are immutable once constructed; the core never mutates history.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`

	// PayeeID is the stable recipient address (a VPA such as
	// "merchant@okbank"). Matching is always done on PayeeID.
	PayeeID string `json:"payee_id"`

	// PayeeName is display-only and never used for matching.
	PayeeName string `json:"payee_name,omitempty"`
}

// NewTransaction validates and builds a Transaction.
func NewTransaction(userID uuid.UUID, amount decimal.Decimal, timestamp time.Time, payeeID, payeeName string) (*Transaction, error) {
	if !amount.IsPositive() {
		return nil, errors.NewValidationError("INVALID_AMOUNT", "transaction amount must be positive")
	}
	if timestamp.IsZero() {
		return nil, errors.NewValidationError("INVALID_TIMESTAMP", "transaction timestamp is required")
	}
	if payeeID == "" {
		return nil, errors.NewValidationError("MISSING_PAYEE", "payee id is required")
	}

	return &Transaction{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Timestamp: timestamp,
		PayeeID:   payeeID,
		PayeeName: payeeName,
	}, nil
}

// AmountFloat returns the amount as float64 for statistical work.
func (t *Transaction) AmountFloat() float64 {
	f, _ := t.Amount.Float64()
	return f
}

// History is one user's past transactions, ordered oldest first.
type History []Transaction

// Sorted returns a copy of the history ordered by timestamp ascending.
func (h History) Sorted() History {
	out := make(History, len(h))
	copy(out, h)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Amounts returns all historical amounts as float64.
func (h History) Amounts() []float64 {
	amounts := make([]float64, len(h))
	for i := range h {
		amounts[i] = h[i].AmountFloat()
	}
	return amounts
}

// Within returns the transactions with timestamps in (end-window, end].
func (h History) Within(end time.Time, window time.Duration) History {
	start := end.Add(-window)
	var out History
	for _, tx := range h {
		if tx.Timestamp.After(start) && !tx.Timestamp.After(end) {
			out = append(out, tx)
		}
	}
	return out
}

// Latest returns the newest timestamp in the history, or the zero time.
func (h History) Latest() time.Time {
	var latest time.Time
	for _, tx := range h {
		if tx.Timestamp.After(latest) {
			latest = tx.Timestamp
		}
	}
	return latest
}

// ByPayee groups the history by payee id, preserving order within groups.
func (h History) ByPayee() map[string]History {
	groups := make(map[string]History)
	for _, tx := range h {
		groups[tx.PayeeID] = append(groups[tx.PayeeID], tx)
	}
	return groups
}
