package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// PlayRepository implements the PlayRepository interface
type PlayRepository struct {
	q queryable
}

// NewPlayRepository creates a new play repository
func NewPlayRepository(db *database.DB) *PlayRepository {
	return &PlayRepository{q: db.Pool}
}

// newPlayRepositoryWithTx creates a new play repository with a transaction
func newPlayRepositoryWithTx(tx queryable) *PlayRepository {
	return &PlayRepository{q: tx}
}

// Create inserts a play and fills in its generated ID
func (r *PlayRepository) Create(ctx context.Context, play *models.Play) error {
	query := `
		INSERT INTO plays (account_id, round_id, currency, bet, auto_cash_out)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		play.AccountID,
		play.RoundID,
		play.Currency,
		play.Bet,
		play.AutoCashOut,
	).Scan(&play.ID, &play.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create play for account %d: %w", play.AccountID, err)
	}

	return nil
}

// GetByID retrieves a play by its ID
func (r *PlayRepository) GetByID(ctx context.Context, id int64) (*models.Play, error) {
	query := `
		SELECT id, account_id, round_id, currency, bet, auto_cash_out, cash_out, created_at
		FROM plays
		WHERE id = $1
	`

	var play models.Play
	err := r.q.QueryRow(ctx, query, id).Scan(
		&play.ID,
		&play.AccountID,
		&play.RoundID,
		&play.Currency,
		&play.Bet,
		&play.AutoCashOut,
		&play.CashOut,
		&play.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get play %d: %w", id, err)
	}

	return &play, nil
}

// SetCashOut records the cashout amount for a live play and returns its bet.
// The cash_out IS NULL predicate is what makes cashing out at-most-once: a
// second attempt matches no row regardless of interleaving.
func (r *PlayRepository) SetCashOut(ctx context.Context, playID int64, amount int64) (int64, error) {
	query := `
		UPDATE plays
		SET cash_out = $1
		WHERE id = $2 AND cash_out IS NULL
		RETURNING bet
	`

	var bet int64
	err := r.q.QueryRow(ctx, query, amount, playID).Scan(&bet)
	if err == pgx.ErrNoRows {
		return 0, models.ErrDoubleCashout
	}
	if err != nil {
		return 0, fmt.Errorf("failed to cash out play %d: %w", playID, err)
	}

	return bet, nil
}
