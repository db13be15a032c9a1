package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// TransactionBuilder builds test Transaction entities
type TransactionBuilder struct {
	t         *testing.T
	id        uuid.UUID
	userID    uuid.UUID
	amount    decimal.Decimal
	timestamp time.Time
	payeeID   string
	payeeName string
}

// NewTransactionBuilder creates a new TransactionBuilder with defaults
func NewTransactionBuilder(t *testing.T) *TransactionBuilder {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	userID, err := uuid.NewRandom()
	require.NoError(t, err)

	return &TransactionBuilder{
		t:         t,
		id:        id,
		userID:    userID,
		amount:    decimal.NewFromInt(1000),
		timestamp: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
		payeeID:   "payee-001",
		payeeName: "Acme Utilities",
	}
}

// WithUserID sets the user ID
func (b *TransactionBuilder) WithUserID(userID uuid.UUID) *TransactionBuilder {
	b.userID = userID
	return b
}

// WithAmount sets the amount
func (b *TransactionBuilder) WithAmount(amount float64) *TransactionBuilder {
	b.amount = decimal.NewFromFloat(amount)
	return b
}

// WithTimestamp sets the execution timestamp
func (b *TransactionBuilder) WithTimestamp(ts time.Time) *TransactionBuilder {
	b.timestamp = ts
	return b
}

// WithPayee sets the payee identity
func (b *TransactionBuilder) WithPayee(id, name string) *TransactionBuilder {
	b.payeeID = id
	b.payeeName = name
	return b
}

// Build creates the Transaction
func (b *TransactionBuilder) Build() transfer.Transaction {
	b.t.Helper()
	tx, err := transfer.NewTransaction(b.userID, b.amount, b.timestamp, b.payeeID, b.payeeName)
	require.NoError(b.t, err)
	tx.ID = b.id
	return *tx
}

// HistoryBuilder builds a user's transaction history for detector tests
type HistoryBuilder struct {
	t      *testing.T
	userID uuid.UUID
	start  time.Time
	txs    transfer.History
}

// NewHistoryBuilder creates a HistoryBuilder anchored at a fixed weekday
// morning so time-based signals are predictable
func NewHistoryBuilder(t *testing.T) *HistoryBuilder {
	t.Helper()
	userID, err := uuid.NewRandom()
	require.NoError(t, err)
	return &HistoryBuilder{
		t:      t,
		userID: userID,
		// Tuesday 11:00 UTC
		start: time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC),
	}
}

// UserID returns the user the history belongs to
func (b *HistoryBuilder) UserID() uuid.UUID {
	return b.userID
}

// Start returns the anchor timestamp of the first generated transaction
func (b *HistoryBuilder) Start() time.Time {
	return b.start
}

// WithStart overrides the anchor timestamp
func (b *HistoryBuilder) WithStart(ts time.Time) *HistoryBuilder {
	b.start = ts
	return b
}

// Add appends one transaction at an offset from the anchor
func (b *HistoryBuilder) Add(amount float64, offset time.Duration, payeeID string) *HistoryBuilder {
	b.t.Helper()
	tx := NewTransactionBuilder(b.t).
		WithUserID(b.userID).
		WithAmount(amount).
		WithTimestamp(b.start.Add(offset)).
		WithPayee(payeeID, payeeID).
		Build()
	b.txs = append(b.txs, tx)
	return b
}

// AddSteady appends count transactions of the same amount to one payee,
// spaced a fixed interval apart
func (b *HistoryBuilder) AddSteady(count int, amount float64, interval time.Duration, payeeID string) *HistoryBuilder {
	for i := 0; i < count; i++ {
		b.Add(amount, time.Duration(i)*interval, payeeID)
	}
	return b
}

// Build returns the accumulated history
func (b *HistoryBuilder) Build() transfer.History {
	return b.txs
}
