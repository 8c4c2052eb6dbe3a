package models

import "time"

// Commission reasons.
const (
	ReasonDivestCommission = "divest-gambling-commission"
	ReasonWeeklyCommission = "weekly-commission"
	ReasonStakeCommission  = "stake-commission"
)

// Commission is an append-only record of commission moved to the house
// account.
type Commission struct {
	ID            string    `db:"id"`
	AccountID     int64     `db:"account_id"` // beneficiary, always the house
	Amount        int64     `db:"amount"`
	Reason        string    `db:"reason"`
	FromAccountID int64     `db:"from_account_id"`
	Currency      Currency  `db:"currency"`
	CreatedAt     time.Time `db:"created_at"`
}
