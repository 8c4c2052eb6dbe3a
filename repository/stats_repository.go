package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// StatsRepository implements the StatsRepository interface
type StatsRepository struct {
	q queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{q: db.Pool}
}

// newStatsRepositoryWithTx creates a new stats repository with a transaction
func newStatsRepositoryWithTx(tx queryable) *StatsRepository {
	return &StatsRepository{q: tx}
}

// AddSiteTotals bumps the running wagered and profit totals for a currency
func (r *StatsRepository) AddSiteTotals(ctx context.Context, currency models.Currency, wageredDelta, profitDelta int64) error {
	query := `
		UPDATE site_stats
		SET wagered = wagered + $1, net_profit = net_profit + $2
		WHERE currency = $3
	`

	result, err := r.q.Exec(ctx, query, wageredDelta, profitDelta, currency)
	if err != nil {
		return fmt.Errorf("failed to update site stats for %s: %w", currency, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no site stats row for currency %s", currency)
	}

	return nil
}

// GetSiteTotals returns the running wagered and profit totals for a currency
func (r *StatsRepository) GetSiteTotals(ctx context.Context, currency models.Currency) (int64, int64, error) {
	query := `
		SELECT wagered, net_profit
		FROM site_stats
		WHERE currency = $1
	`

	var wagered, profit int64
	if err := r.q.QueryRow(ctx, query, currency).Scan(&wagered, &profit); err != nil {
		return 0, 0, fmt.Errorf("failed to get site stats for %s: %w", currency, err)
	}

	return wagered, profit, nil
}
