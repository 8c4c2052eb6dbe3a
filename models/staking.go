package models

import "time"

// Stake feed row statuses.
const (
	StakeStatusStake  = "stake"
	StakeStatusOrphan = "orphan"
)

// StakeFeedRow is one event from the external staking wallet's append-only
// feed. Rows are consumed exactly once; Processed is set in the same
// transaction that applies the row's effect.
type StakeFeedRow struct {
	ID        int64      `db:"id"`
	Address   string     `db:"address"`
	Amount    int64      `db:"amount"` // signed, internal units
	Status    string     `db:"status"`
	Processed *time.Time `db:"processed"`
	CreatedAt time.Time  `db:"created_at"`
}

// StakingPool is the singleton row of running staking totals.
type StakingPool struct {
	StakeCount  int64 `db:"stake_count"`
	StakeTotal  int64 `db:"stake_total"`
	OrphanCount int64 `db:"orphan_count"`

	// Held is a signed liability buffer. Negative batches accumulate here and
	// are netted against later positive ones before anything reaches the
	// public bankroll.
	Held int64 `db:"held"`
}
