package models

import "time"

// Play is a single wager in one game round. Created at bet placement, its
// CashOut is set exactly once at cashout time and the row is immutable
// afterward.
type Play struct {
	ID        int64    `db:"id"`
	AccountID int64    `db:"account_id"`
	RoundID   int64    `db:"round_id"`
	Currency  Currency `db:"currency"`

	// Bet is the amount wagered, in internal units.
	Bet int64 `db:"bet"`

	// AutoCashOut is the multiplier (x100) at which the round engine cashes
	// the play out automatically, if any.
	AutoCashOut *int64 `db:"auto_cash_out"`

	// CashOut is the realized amount, nil while the round is live. The
	// conditional update that sets it only touches rows where it is still
	// nil, which makes cashout at-most-once.
	CashOut *int64 `db:"cash_out"`

	CreatedAt time.Time `db:"created_at"`
}
