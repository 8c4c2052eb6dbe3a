package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// InvestmentRepository implements the InvestmentRepository interface
type InvestmentRepository struct {
	q queryable
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(db *database.DB) *InvestmentRepository {
	return &InvestmentRepository{q: db.Pool}
}

// newInvestmentRepositoryWithTx creates a new investment repository with a transaction
func newInvestmentRepositoryWithTx(tx queryable) *InvestmentRepository {
	return &InvestmentRepository{q: tx}
}

const investmentColumns = `
	id, account_id, username, amount, action, all_funds,
	invested_prev, pool_total_prev, status, commission_amount, currency, created_at
`

func scanInvestment(row pgx.Row) (*models.Investment, error) {
	var inv models.Investment
	err := row.Scan(
		&inv.ID,
		&inv.AccountID,
		&inv.Username,
		&inv.Amount,
		&inv.Action,
		&inv.AllFunds,
		&inv.InvestedPrev,
		&inv.PoolTotalPrev,
		&inv.Status,
		&inv.CommissionAmount,
		&inv.Currency,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a request. The partial unique index on pending rows turns a
// second pending request for the same account and currency into
// ErrInvestmentAlreadyMade even under concurrent submission.
func (r *InvestmentRepository) Create(ctx context.Context, investment *models.Investment) error {
	query := `
		INSERT INTO investments (
			id, account_id, username, amount, action, all_funds,
			invested_prev, pool_total_prev, status, commission_amount, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		investment.ID,
		investment.AccountID,
		investment.Username,
		investment.Amount,
		investment.Action,
		investment.AllFunds,
		investment.InvestedPrev,
		investment.PoolTotalPrev,
		investment.Status,
		investment.CommissionAmount,
		investment.Currency,
	).Scan(&investment.CreatedAt)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgUniqueViolation) {
			return models.ErrInvestmentAlreadyMade
		}
		return fmt.Errorf("failed to create investment request %s: %w", investment.ID, err)
	}

	return nil
}

// GetByID retrieves a request by its ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*models.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get investment request %s: %w", id, err)
	}

	return inv, nil
}

// HasPending reports whether the account has an unsettled request
func (r *InvestmentRepository) HasPending(ctx context.Context, accountID int64, currency models.Currency) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM investments
			WHERE account_id = $1 AND currency = $2 AND status IS NULL
		)
	`

	var pending bool
	if err := r.q.QueryRow(ctx, query, accountID, currency).Scan(&pending); err != nil {
		return false, fmt.Errorf("failed to check pending investment for account %d: %w", accountID, err)
	}

	return pending, nil
}

// ListPending returns unsettled requests of one action kind, oldest first
func (r *InvestmentRepository) ListPending(ctx context.Context, action models.InvestmentAction, currency models.Currency) ([]*models.Investment, error) {
	query := `
		SELECT ` + investmentColumns + `
		FROM investments
		WHERE action = $1 AND currency = $2 AND status IS NULL
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, action, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending %s requests: %w", action, err)
	}
	defer rows.Close()

	var pending []*models.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment request: %w", err)
		}
		pending = append(pending, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment requests: %w", err)
	}

	return pending, nil
}

// Complete marks a request settled and records its final amounts
func (r *InvestmentRepository) Complete(ctx context.Context, id string, amount, commission, investedPrev, poolTotalPrev int64) error {
	query := `
		UPDATE investments
		SET status = $1, amount = $2, commission_amount = $3,
		    invested_prev = $4, pool_total_prev = $5
		WHERE id = $6 AND status IS NULL
	`

	result, err := r.q.Exec(ctx, query,
		models.InvestmentStatusComplete, amount, commission, investedPrev, poolTotalPrev, id)
	if err != nil {
		return fmt.Errorf("failed to complete investment request %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("investment request %s is not pending", id)
	}

	return nil
}
