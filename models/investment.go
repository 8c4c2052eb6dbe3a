package models

import "time"

// InvestmentAction distinguishes investment request kinds.
type InvestmentAction string

const (
	ActionInvest InvestmentAction = "invest"
	ActionDivest InvestmentAction = "divest"

	// ActionWeeklyCommission marks the audit rows the weekly sweep writes.
	ActionWeeklyCommission InvestmentAction = "weekly-commission"
)

// InvestmentStatusComplete is the terminal request status. A nil status means
// the request is still pending; at most one pending request may exist per
// (account, currency).
const InvestmentStatusComplete = "complete"

// Investment is a queued invest/divest request. It snapshots the account's
// invested balance and the pool total as of submission and is finalized by
// round-end settlement (invest) or SettleDivest (divest); rows are never
// deleted.
type Investment struct {
	ID        string           `db:"id"`
	AccountID int64            `db:"account_id"`
	Username  string           `db:"username"`
	Amount    int64            `db:"amount"`
	Action    InvestmentAction `db:"action"`

	// AllFunds marks an "invest/divest everything" request.
	AllFunds bool `db:"all_funds"`

	// InvestedPrev is the account's invested balance at submission.
	InvestedPrev int64 `db:"invested_prev"`

	// PoolTotalPrev is the pool's total invested balance at submission.
	PoolTotalPrev int64 `db:"pool_total_prev"`

	Status           *string   `db:"status"`
	CommissionAmount int64     `db:"commission_amount"`
	Currency         Currency  `db:"currency"`
	CreatedAt        time.Time `db:"created_at"`
}

// Pending reports whether the request has not been settled yet.
func (i *Investment) Pending() bool { return i.Status == nil }
