package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
)

// StakeRepository implements the StakeRepository interface
type StakeRepository struct {
	q queryable
}

// NewStakeRepository creates a new stake repository
func NewStakeRepository(db *database.DB) *StakeRepository {
	return &StakeRepository{q: db.Pool}
}

// newStakeRepositoryWithTx creates a new stake repository with a transaction
func newStakeRepositoryWithTx(tx queryable) *StakeRepository {
	return &StakeRepository{q: tx}
}

// GetPool retrieves the singleton pool totals row
func (r *StakeRepository) GetPool(ctx context.Context) (*models.StakingPool, error) {
	query := `
		SELECT stake_count, stake_total, orphan_count, held
		FROM staking_pool
	`

	var pool models.StakingPool
	err := r.q.QueryRow(ctx, query).Scan(
		&pool.StakeCount,
		&pool.StakeTotal,
		&pool.OrphanCount,
		&pool.Held,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get staking pool: %w", err)
	}

	return &pool, nil
}

// UpdatePool writes the singleton pool totals row
func (r *StakeRepository) UpdatePool(ctx context.Context, pool *models.StakingPool) error {
	query := `
		UPDATE staking_pool
		SET stake_count = $1, stake_total = $2, orphan_count = $3, held = $4
	`

	_, err := r.q.Exec(ctx, query, pool.StakeCount, pool.StakeTotal, pool.OrphanCount, pool.Held)
	if err != nil {
		return fmt.Errorf("failed to update staking pool: %w", err)
	}

	return nil
}

// ListUnprocessed returns feed rows not yet applied, newest first
func (r *StakeRepository) ListUnprocessed(ctx context.Context) ([]*models.StakeFeedRow, error) {
	query := `
		SELECT id, address, amount, status, processed, created_at
		FROM stake_feed
		WHERE processed IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed stakes: %w", err)
	}
	defer rows.Close()

	var feed []*models.StakeFeedRow
	for rows.Next() {
		var row models.StakeFeedRow
		err := rows.Scan(
			&row.ID,
			&row.Address,
			&row.Amount,
			&row.Status,
			&row.Processed,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stake row: %w", err)
		}
		feed = append(feed, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stake rows: %w", err)
	}

	return feed, nil
}

// MarkProcessed stamps the given feed rows as applied
func (r *StakeRepository) MarkProcessed(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE stake_feed
		SET processed = NOW()
		WHERE id = ANY($1)
	`

	result, err := r.q.Exec(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to mark stakes processed: %w", err)
	}
	if int(result.RowsAffected()) != len(ids) {
		return fmt.Errorf("marked %d of %d stake rows processed", result.RowsAffected(), len(ids))
	}

	return nil
}

// Append inserts a feed row
func (r *StakeRepository) Append(ctx context.Context, row *models.StakeFeedRow) error {
	query := `
		INSERT INTO stake_feed (address, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, row.Address, row.Amount, row.Status).Scan(&row.ID, &row.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append stake row: %w", err)
	}

	return nil
}
