package service

import (
	"context"

	"bankroll/events"
	"bankroll/models"
)

// AccountRepository defines the interface for account and balance data access
type AccountRepository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByUsername retrieves an account by username, case-insensitively
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Create creates a new account with zero balance rows for every currency
	Create(ctx context.Context, username string, role models.Role) (*models.Account, error)

	// SetFrozen freezes or unfreezes an account
	SetFrozen(ctx context.Context, id int64, frozen bool) error

	// GetBalance retrieves one account's balance row for a currency
	GetBalance(ctx context.Context, accountID int64, currency models.Currency) (*models.AccountBalance, error)

	// Credit adds to the spendable balance
	Credit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error

	// Debit subtracts from the spendable balance, failing with
	// ErrInsufficientBalance when it would go negative
	Debit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error

	// ApplyBet debits the balance and bumps lifetime wagered in one statement
	ApplyBet(ctx context.Context, accountID int64, currency models.Currency, amount int64) error

	// AddNetProfit adjusts lifetime net profit by delta (may be negative)
	AddNetProfit(ctx context.Context, accountID int64, currency models.Currency, delta int64) error

	// AddInvested adjusts the invested balance by delta (may be negative)
	AddInvested(ctx context.Context, accountID int64, currency models.Currency, delta int64) error

	// TotalInvested sums invested balances strictly above minInvested
	TotalInvested(ctx context.Context, currency models.Currency, minInvested int64) (int64, error)

	// ListInvestors returns balance rows with invested strictly above minInvested
	ListInvestors(ctx context.Context, currency models.Currency, minInvested int64) ([]*models.AccountBalance, error)

	// AddRoundCut applies one account's share of a round result to both
	// invested and bankroll_profit
	AddRoundCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error

	// AddStakingCut applies one account's share of staking income to both
	// invested and staking_profit
	AddStakingCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error

	// ApplyDivest sets the high-water mark, credits the balance and debits
	// invested in one statement
	ApplyDivest(ctx context.Context, accountID int64, currency models.Currency, hightide, credit, investedDebit int64) error

	// ApplyDivestAll sets the high-water mark, credits the balance and zeroes
	// invested in one statement
	ApplyDivestAll(ctx context.Context, accountID int64, currency models.Currency, hightide, credit int64) error

	// ApplyWeeklyCommission sets the high-water mark and debits invested by
	// the commission amount
	ApplyWeeklyCommission(ctx context.Context, accountID int64, currency models.Currency, hightide, commission int64) error
}

// PlayRepository defines the interface for play (bet) data access
type PlayRepository interface {
	// Create inserts a play and fills in its generated ID
	Create(ctx context.Context, play *models.Play) error

	// GetByID retrieves a play by its ID
	GetByID(ctx context.Context, id int64) (*models.Play, error)

	// SetCashOut records the cashout amount for a live play and returns its
	// bet. Fails with ErrDoubleCashout if the play was already cashed out.
	SetCashOut(ctx context.Context, playID int64, amount int64) (int64, error)
}

// TransferRepository defines the interface for tip audit records
type TransferRepository interface {
	// Create inserts a transfer record, failing with ErrDuplicateTransfer on
	// a replayed ID
	Create(ctx context.Context, transfer *models.Transfer) error
}

// InvestmentRepository defines the interface for invest/divest request data access
type InvestmentRepository interface {
	// Create inserts a request, failing with ErrInvestmentAlreadyMade when a
	// pending request already exists for the account and currency
	Create(ctx context.Context, investment *models.Investment) error

	// GetByID retrieves a request by its ID
	GetByID(ctx context.Context, id string) (*models.Investment, error)

	// HasPending reports whether the account has an unsettled request
	HasPending(ctx context.Context, accountID int64, currency models.Currency) (bool, error)

	// ListPending returns unsettled requests of one action kind, oldest first
	ListPending(ctx context.Context, action models.InvestmentAction, currency models.Currency) ([]*models.Investment, error)

	// Complete marks a request settled and records its final amounts
	Complete(ctx context.Context, id string, amount, commission, investedPrev, poolTotalPrev int64) error
}

// CommissionRepository defines the interface for commission audit records
type CommissionRepository interface {
	// Create inserts a commission record
	Create(ctx context.Context, commission *models.Commission) error
}

// StakeRepository defines the interface for the staking feed and pool state
type StakeRepository interface {
	// GetPool retrieves the singleton pool totals row
	GetPool(ctx context.Context) (*models.StakingPool, error)

	// UpdatePool writes the singleton pool totals row
	UpdatePool(ctx context.Context, pool *models.StakingPool) error

	// ListUnprocessed returns feed rows not yet applied, newest first
	ListUnprocessed(ctx context.Context) ([]*models.StakeFeedRow, error)

	// MarkProcessed stamps the given feed rows as applied
	MarkProcessed(ctx context.Context, ids []int64) error

	// Append inserts a feed row
	Append(ctx context.Context, row *models.StakeFeedRow) error
}

// StatsRepository defines the interface for site-wide aggregates
type StatsRepository interface {
	// AddSiteTotals bumps the running wagered and profit totals for a currency
	AddSiteTotals(ctx context.Context, currency models.Currency, wageredDelta, profitDelta int64) error

	// GetSiteTotals returns the running wagered and profit totals for a currency
	GetSiteTotals(ctx context.Context, currency models.Currency) (wagered int64, profit int64, err error)
}

// WeeklyRepository defines the interface for weekly prize and commission data access
type WeeklyRepository interface {
	// CreateDonation inserts a prize pool donation
	CreateDonation(ctx context.Context, donation *models.WeeklyDonation) error

	// DonatedTotal sums donations for one week
	DonatedTotal(ctx context.Context, week, year int, currency models.Currency) (int64, error)

	// GetPrizeLog retrieves the payout completion row for a week, nil if the
	// week has not been paid
	GetPrizeLog(ctx context.Context, week, year int, currency models.Currency) (*models.WeeklyPrizeLog, error)

	// CreatePrizeLog inserts the payout completion row for a week
	CreatePrizeLog(ctx context.Context, log *models.WeeklyPrizeLog) error

	// CreatePrize inserts one paid prize
	CreatePrize(ctx context.Context, prize *models.WeeklyPrize) error

	// RebuildLeaderboard recomputes a week's leaderboard rows from plays
	RebuildLeaderboard(ctx context.Context, week, year int, currency models.Currency) error

	// TopNet returns the week's top accounts by net profit
	TopNet(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error)

	// TopWagered returns the week's top accounts by amount wagered
	TopWagered(ctx context.Context, week, year int, currency models.Currency, limit int) ([]*models.LeaderboardEntry, error)

	// PendingCommissionRun returns the queued commission run for a currency,
	// nil if none is queued
	PendingCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error)

	// QueueCommissionRun inserts a queued commission run
	QueueCommissionRun(ctx context.Context, currency models.Currency) (*models.WeeklyCommissionRun, error)

	// CompleteCommissionRun marks a run complete with its final tallies
	CompleteCommissionRun(ctx context.Context, id int64, users int, amount int64) error
}

// LedgerService defines the interface for balance-moving player operations.
// Public amounts are in satoshis; conversion to internal units happens inside.
type LedgerService interface {
	// PlaceBet debits the bet and records a play for the round
	PlaceBet(ctx context.Context, accountID, roundID int64, betSatoshis int64, autoCashOut *int64, currency models.Currency) (*models.Play, error)

	// CashOut credits the cashout amount against a live play, at most once
	CashOut(ctx context.Context, accountID, playID int64, amountSatoshis int64, currency models.Currency) error

	// Transfer tips another account. The caller-supplied id makes retries safe.
	Transfer(ctx context.Context, id string, fromAccountID int64, toUsername string, amountSatoshis int64, currency models.Currency) error

	// TransferMany tips several accounts at once, dividing the amount
	// according to mode
	TransferMany(ctx context.Context, fromAccountID int64, toUsernames []string, amountSatoshis int64, mode models.DivyMode, currency models.Currency) ([]models.TransferSplitResult, error)
}

// InvestService defines the interface for bankroll investment operations
type InvestService interface {
	// QueueInvest queues a request to move balance into the bankroll
	QueueInvest(ctx context.Context, accountID int64, amountSatoshis int64, allFunds bool, currency models.Currency) (*models.Investment, error)

	// QueueDivest queues a request to move invested funds back to balance
	QueueDivest(ctx context.Context, accountID int64, amountSatoshis int64, allFunds bool, currency models.Currency) (*models.Investment, error)

	// SettlePendingInvests applies queued invest requests, one transaction each
	SettlePendingInvests(ctx context.Context, currency models.Currency) (int, error)

	// SettlePendingDivests applies queued divest requests, taking commission
	// above the high-water mark, one transaction each
	SettlePendingDivests(ctx context.Context, currency models.Currency) (int, error)

	// DistributeRoundResult shares a finished round's profit or loss across
	// invested accounts in proportion to their stakes
	DistributeRoundResult(ctx context.Context, roundID int64, currency models.Currency, totalBetSatoshis, totalPaidSatoshis int64) error
}

// WeeklyService defines the interface for the weekly prize and commission cycle
type WeeklyService interface {
	// Donate moves balance into the current week's prize pool and returns the
	// week's running total
	Donate(ctx context.Context, accountID int64, amountSatoshis int64, currency models.Currency) (int64, error)

	// QueueCommission queues a commission sweep unless one is already pending
	QueueCommission(ctx context.Context, currency models.Currency) error

	// RunCommission executes the queued commission sweep, if any
	RunCommission(ctx context.Context, currency models.Currency) error

	// PayoutPrizes pays the previous week's leaderboard prizes if that week
	// has not been paid yet
	PayoutPrizes(ctx context.Context, currency models.Currency) error
}

// StakingService defines the interface for the staking feed consumer
type StakingService interface {
	// Run consumes the staking feed until the context is canceled or the
	// pool totals fail their sanity check
	Run(ctx context.Context) error
}

// StatsService defines the interface for statistics reads
type StatsService interface {
	// GetAccountStats returns one account's stats in satoshis
	GetAccountStats(ctx context.Context, accountID int64, currency models.Currency) (*models.AccountStats, error)

	// GetSiteStats returns the site-wide aggregate in satoshis
	GetSiteStats(ctx context.Context, currency models.Currency) (*models.SiteStats, error)
}

// AccountService defines the interface for account management
type AccountService interface {
	// GetOrCreateAccount retrieves an account by username or creates it
	GetOrCreateAccount(ctx context.Context, username string) (*models.Account, error)

	// SetFrozen freezes or unfreezes an account
	SetFrozen(ctx context.Context, accountID int64, frozen bool) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork represents a transactional boundary with access to all repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// AccountRepository returns the account repository bound to this transaction
	AccountRepository() AccountRepository

	// PlayRepository returns the play repository bound to this transaction
	PlayRepository() PlayRepository

	// TransferRepository returns the transfer repository bound to this transaction
	TransferRepository() TransferRepository

	// InvestmentRepository returns the investment repository bound to this transaction
	InvestmentRepository() InvestmentRepository

	// CommissionRepository returns the commission repository bound to this transaction
	CommissionRepository() CommissionRepository

	// StakeRepository returns the stake repository bound to this transaction
	StakeRepository() StakeRepository

	// StatsRepository returns the stats repository bound to this transaction
	StatsRepository() StatsRepository

	// WeeklyRepository returns the weekly repository bound to this transaction
	WeeklyRepository() WeeklyRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
