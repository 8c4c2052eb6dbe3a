package models

import "time"

// WeeklyDonation is one contribution to a week's prize pool.
type WeeklyDonation struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Amount    int64     `db:"amount"`
	Week      int       `db:"week"`
	Year      int       `db:"year"`
	Currency  Currency  `db:"currency"`
	CreatedAt time.Time `db:"created_at"`
}

// Prize leaderboard types.
const (
	PrizeTypeNet     = "net"
	PrizeTypeWagered = "wagered"
)

// WeeklyPrize is one paid leaderboard prize.
type WeeklyPrize struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	Amount    int64     `db:"amount"`
	Week      int       `db:"week"`
	Year      int       `db:"year"`
	PrizeType string    `db:"prize_type"`
	Currency  Currency  `db:"currency"`
	CreatedAt time.Time `db:"created_at"`
}

// WeeklyPrizeLog marks a (week, year, currency) as paid out; its presence is
// the idempotence guard against paying a week twice.
type WeeklyPrizeLog struct {
	Week      int       `db:"week"`
	Year      int       `db:"year"`
	Currency  Currency  `db:"currency"`
	Status    string    `db:"status"`
	Total     int64     `db:"total"`
	CreatedAt time.Time `db:"created_at"`
}

// Weekly commission run statuses.
const (
	CommissionRunQueued   = "QUEUED"
	CommissionRunComplete = "COMPLETE"
)

// WeeklyCommissionRun is the completion record for one commission sweep.
type WeeklyCommissionRun struct {
	ID            int64      `db:"id"`
	Currency      Currency   `db:"currency"`
	Status        string     `db:"status"`
	UsersAffected int        `db:"users_affected"`
	Amount        int64      `db:"amount"`
	QueuedAt      time.Time  `db:"queued_at"`
	CompletedAt   *time.Time `db:"completed_at"`
}

// LeaderboardEntry is one ranked row of a weekly leaderboard. The rollup that
// produces these rows runs outside the ledger; the prize payout only reads
// them.
type LeaderboardEntry struct {
	AccountID   int64    `db:"account_id"`
	Year        int      `db:"year"`
	Week        int      `db:"week"`
	Currency    Currency `db:"currency"`
	NetProfit   int64    `db:"net_profit"`
	Wagered     int64    `db:"wagered"`
	NetRank     int      `db:"net_rank"`
	WageredRank int      `db:"wagered_rank"`
}
