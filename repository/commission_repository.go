package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// CommissionRepository implements the CommissionRepository interface
type CommissionRepository struct {
	q queryable
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *database.DB) *CommissionRepository {
	return &CommissionRepository{q: db.Pool}
}

// newCommissionRepositoryWithTx creates a new commission repository with a transaction
func newCommissionRepositoryWithTx(tx queryable) *CommissionRepository {
	return &CommissionRepository{q: tx}
}

// Create inserts a commission record
func (r *CommissionRepository) Create(ctx context.Context, commission *models.Commission) error {
	query := `
		INSERT INTO commissions (id, account_id, amount, reason, from_account_id, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		commission.ID,
		commission.AccountID,
		commission.Amount,
		commission.Reason,
		commission.FromAccountID,
		commission.Currency,
	).Scan(&commission.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create commission record %s: %w", commission.ID, err)
	}

	return nil
}
