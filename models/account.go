package models

import "time"

// Role is an account's privilege level.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Account represents a site user. Balances live in AccountBalance rows, one
// per currency.
type Account struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Role      Role      `db:"role"`
	Frozen    bool      `db:"frozen"`
	MfaSecret *string   `db:"mfa_secret"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// AccountBalance holds one account's per-currency monetary state, all in
// internal units. Balance and Invested are guarded by non-negative CHECK
// constraints in the schema; the ledger translates violations into
// ErrInsufficientBalance.
type AccountBalance struct {
	AccountID int64    `db:"account_id"`
	Currency  Currency `db:"currency"`

	// Balance is the spendable balance.
	Balance int64 `db:"balance"`

	// Invested is the portion placed into the shared bankroll.
	Invested int64 `db:"invested"`

	// Wagered is the lifetime total bet.
	Wagered int64 `db:"wagered"`

	// NetProfit is lifetime cashouts minus bets.
	NetProfit int64 `db:"net_profit"`

	// BankrollProfit accumulates the account's share of round results.
	BankrollProfit int64 `db:"bankroll_profit"`

	// Hightide is the high-water mark: the bankroll-profit level the account
	// has already paid commission up to.
	Hightide int64 `db:"hightide"`

	// StakingProfit accumulates the account's share of staking income.
	StakingProfit int64 `db:"staking_profit"`
}
