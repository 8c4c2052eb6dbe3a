package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// TransferRepository implements the TransferRepository interface
type TransferRepository struct {
	q queryable
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *database.DB) *TransferRepository {
	return &TransferRepository{q: db.Pool}
}

// newTransferRepositoryWithTx creates a new transfer repository with a transaction
func newTransferRepositoryWithTx(tx queryable) *TransferRepository {
	return &TransferRepository{q: tx}
}

// Create inserts a transfer record. The caller-supplied primary key doubles
// as the replay guard: retrying the same tip hits the unique violation and
// maps to ErrDuplicateTransfer.
func (r *TransferRepository) Create(ctx context.Context, transfer *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		transfer.ID,
		transfer.FromAccountID,
		transfer.ToAccountID,
		transfer.Amount,
		transfer.Currency,
	).Scan(&transfer.CreatedAt)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgUniqueViolation) {
			return models.ErrDuplicateTransfer
		}
		return fmt.Errorf("failed to create transfer %s: %w", transfer.ID, err)
	}

	return nil
}
