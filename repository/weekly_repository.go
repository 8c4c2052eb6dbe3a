package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// WeeklyRepository implements the WeeklyRepository interface
type WeeklyRepository struct {
	q queryable
}

// NewWeeklyRepository creates a new weekly repository
func NewWeeklyRepository(db *database.DB) *WeeklyRepository {
	return &WeeklyRepository{q: db.Pool}
}

// newWeeklyRepositoryWithTx creates a new weekly repository with a transaction
func newWeeklyRepositoryWithTx(tx queryable) *WeeklyRepository {
	return &WeeklyRepository{q: tx}
}

// CreateDonation inserts a prize pool donation
func (r *WeeklyRepository) CreateDonation(ctx context.Context, donation *models.WeeklyDonation) error {
	query := `
		INSERT INTO weekly_donations (account_id, amount, week, year, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		donation.AccountID,
		donation.Amount,
		donation.Week,
		donation.Year,
		donation.Currency,
	).Scan(&donation.ID, &donation.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create donation for account %d: %w", donation.AccountID, err)
	}

	return nil
}

// DonatedTotal sums donations for one week
func (r *WeeklyRepository) DonatedTotal(ctx context.Context, week, year int, currency models.Currency) (int64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM weekly_donations
		WHERE week = $1 AND year = $2 AND currency = $3
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, week, year, currency).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum donations for week %d/%d: %w", week, year, err)
	}

	return total, nil
}

// GetPrizeLog retrieves the payout completion row for a week
func (r *WeeklyRepository) GetPrizeLog(ctx context.Context, week, year int, currency models.Currency) (*models.WeeklyPrizeLog, error) {
	query := `
		SELECT week, year, currency, status, total, created_at
		FROM weekly_prize_log
		WHERE week = $1 AND year = $2 AND currency = $3
	`

	var log models.WeeklyPrizeLog
	err := r.q.QueryRow(ctx, query, week, year, currency).Scan(
		&log.Week,
		&log.Year,
		&log.Currency,
		&log.Status,
		&log.Total,
		&log.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize log for week %d/%d: %w", week, year, err)
	}

	return &log, nil
}

// CreatePrizeLog inserts the payout completion row for a week. The primary
// key makes a concurrent second payout of the same week fail.
func (r *WeeklyRepository) CreatePrizeLog(ctx context.Context, log *models.WeeklyPrizeLog) error {
	query := `
		INSERT INTO weekly_prize_log (week, year, currency, status, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		log.Week,
		log.Year,
		log.Currency,
		log.Status,
		log.Total,
	).Scan(&log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prize log for week %d/%d: %w", log.Week, log.Year, err)
	}

	return nil
}

// CreatePrize inserts one paid prize
func (r *WeeklyRepository) CreatePrize(ctx context.Context, prize *models.WeeklyPrize) error {
	query := `
		INSERT INTO weekly_prizes (account_id, amount, week, year, prize_type, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		prize.AccountID,
		prize.Amount,
		prize.Week,
		prize.Year,
		prize.PrizeType,
		prize.Currency,
	).Scan(&prize.ID, &prize.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prize for account %d: %w", prize.AccountID, err)
	}

	return nil
}

// RebuildLeaderboard recomputes a week's leaderboard rows from the plays
// recorded during that ISO week. Plays are bucketed by UTC so the weeks line
// up with the UTC schedule regardless of the session time zone.
func (r *WeeklyRepository) RebuildLeaderboard(ctx context.Context, week, year int, currency models.Currency) error {
	query := `
		INSERT INTO weekly_leaderboards
			(account_id, year, week, currency, net_profit, wagered, net_rank, wagered_rank)
		SELECT account_id, $1, $2, $3, net_profit, wagered,
		       RANK() OVER (ORDER BY net_profit DESC),
		       RANK() OVER (ORDER BY wagered DESC)
		FROM (
			SELECT account_id,
			       SUM(COALESCE(cash_out, 0) - bet) AS net_profit,
			       SUM(bet) AS wagered
			FROM plays
			WHERE currency = $3
			  AND DATE_PART('week', created_at AT TIME ZONE 'UTC') = $2
			  AND DATE_PART('isoyear', created_at AT TIME ZONE 'UTC') = $1
			GROUP BY account_id
		) totals
		ON CONFLICT (account_id, year, week, currency) DO UPDATE
		SET net_profit = EXCLUDED.net_profit,
		    wagered = EXCLUDED.wagered,
		    net_rank = EXCLUDED.net_rank,
		    wagered_rank = EXCLUDED.wagered_rank
	`

	if _, err := r.q.Exec(ctx, query, year, week, currency); err != nil {
		return fmt.Errorf("failed to rebuild leaderboard for week %d/%d: %w", week, year, err)
	}

	return nil
}

// TopNet returns the week's top accounts by net profit
func (r *WeeklyRepository) TopNet(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error) {
	return r.top(ctx, week, year, currency, limit, "net_rank")
}

// TopWagered returns the week's top accounts by amount wagered
func (r *WeeklyRepository) TopWagered(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error) {
	return r.top(ctx, week, year, currency, limit, "wagered_rank")
}

func (r *WeeklyRepository) top(ctx context.Context, week, year int, currency models.Currency, limit int, rankColumn string) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT account_id, year, week, currency, net_profit, wagered, net_rank, wagered_rank
		FROM weekly_leaderboards
		WHERE week = $1 AND year = $2 AND currency = $3
		ORDER BY ` + rankColumn + `
		LIMIT $4
	`

	rows, err := r.q.Query(ctx, query, week, year, currency, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard for week %d/%d: %w", week, year, err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(
			&e.AccountID,
			&e.Year,
			&e.Week,
			&e.Currency,
			&e.NetProfit,
			&e.Wagered,
			&e.NetRank,
			&e.WageredRank,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	return entries, nil
}

// PendingCommissionRun returns the queued commission run for a currency
func (r *WeeklyRepository) PendingCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error) {
	query := `
		SELECT id, currency, status, users_affected, amount, queued_at, completed_at
		FROM weekly_commission_runs
		WHERE currency = $1 AND status = $2
		ORDER BY queued_at
		LIMIT 1
	`

	var run models.WeeklyCommissionRun
	err := r.q.QueryRow(ctx, query, currency, models.CommissionRunQueued).Scan(
		&run.ID,
		&run.Currency,
		&run.Status,
		&run.UsersAffected,
		&run.Amount,
		&run.QueuedAt,
		&run.CompletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending commission run: %w", err)
	}

	return &run, nil
}

// QueueCommissionRun inserts a queued commission run
func (r *WeeklyRepository) QueueCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error) {
	query := `
		INSERT INTO weekly_commission_runs (currency)
		VALUES ($1)
		RETURNING id, currency, status, users_affected, amount, queued_at, completed_at
	`

	var run models.WeeklyCommissionRun
	err := r.q.QueryRow(ctx, query, currency).Scan(
		&run.ID,
		&run.Currency,
		&run.Status,
		&run.UsersAffected,
		&run.Amount,
		&run.QueuedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to queue commission run: %w", err)
	}

	return &run, nil
}

// CompleteCommissionRun marks a run complete with its final tallies
func (r *WeeklyRepository) CompleteCommissionRun(ctx context.Context, id int64, users int, amount int64) error {
	query := `
		UPDATE weekly_commission_runs
		SET status = $1, users_affected = $2, amount = $3, completed_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, models.CommissionRunComplete, users, amount, id)
	if err != nil {
		return fmt.Errorf("failed to complete commission run %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no commission run with id %d", id)
	}

	return nil
}
