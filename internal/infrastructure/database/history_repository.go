package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
)

// TransactionHistoryRepository reads and writes the completed-transfer
// history that the detectors score against.
type TransactionHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionHistoryRepository(pool *pgxpool.Pool) *TransactionHistoryRepository {
	return &TransactionHistoryRepository{pool: pool}
}

// GetUserHistory returns up to limit most recent completed transfers for
// the user, oldest first so callers can feed it to the detectors directly.
func (r *TransactionHistoryRepository) GetUserHistory(ctx context.Context, userID uuid.UUID, limit int) (transfer.History, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, amount, executed_at, payee_id, payee_name
		FROM (
			SELECT id, user_id, amount, executed_at, payee_id, payee_name
			FROM transfers
			WHERE user_id = $1 AND status = 'completed'
			ORDER BY executed_at DESC
			LIMIT $2
		) recent
		ORDER BY executed_at ASC
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying user history: %w", err)
	}
	defer rows.Close()

	history := make(transfer.History, 0, limit)
	for rows.Next() {
		var tx transfer.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Timestamp, &tx.PayeeID, &tx.PayeeName); err != nil {
			return nil, fmt.Errorf("scanning transfer row: %w", err)
		}
		history = append(history, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading transfer rows: %w", err)
	}
	return history, nil
}

// SaveTransaction persists a completed transfer so future assessments see it.
func (r *TransactionHistoryRepository) SaveTransaction(ctx context.Context, tx *transfer.Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transfers (id, user_id, amount, executed_at, payee_id, payee_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'completed')
	`, tx.ID, tx.UserID, tx.Amount, tx.Timestamp, tx.PayeeID, tx.PayeeName)
	if err != nil {
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

// GetTransaction fetches a single transfer by id.
func (r *TransactionHistoryRepository) GetTransaction(ctx context.Context, id uuid.UUID) (*transfer.Transaction, error) {
	var tx transfer.Transaction
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, amount, executed_at, payee_id, payee_name
		FROM transfers
		WHERE id = $1
	`, id).Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Timestamp, &tx.PayeeID, &tx.PayeeName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("transfer %s not found", id)
		}
		return nil, fmt.Errorf("querying transfer: %w", err)
	}
	return &tx, nil
}
