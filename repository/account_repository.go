package repository

import (
	"context"
	"fmt"

	"bankroll/database"
	"bankroll/models"
	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `
		SELECT id, username, role, frozen, mfa_secret, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.Role,
		&account.Frozen,
		&account.MfaSecret,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return &account, nil
}

// GetByUsername retrieves an account by username, case-insensitively
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `
		SELECT id, username, role, frozen, mfa_secret, created_at, updated_at
		FROM accounts
		WHERE LOWER(username) = LOWER($1)
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.Role,
		&account.Frozen,
		&account.MfaSecret,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q: %w", username, err)
	}

	return &account, nil
}

// Create creates a new account with zero balance rows for every currency
func (r *AccountRepository) Create(ctx context.Context, username string, role models.Role) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, role)
		VALUES ($1, $2)
		RETURNING id, username, role, frozen, mfa_secret, created_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, username, role).Scan(
		&account.ID,
		&account.Username,
		&account.Role,
		&account.Frozen,
		&account.MfaSecret,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %q: %w", username, err)
	}

	for _, currency := range models.Currencies() {
		_, err = r.q.Exec(ctx, `INSERT INTO account_balances (account_id, currency) VALUES ($1, $2)`, account.ID, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s balance for account %d: %w", currency, account.ID, err)
		}
	}

	return &account, nil
}

// SetFrozen freezes or unfreezes an account
func (r *AccountRepository) SetFrozen(ctx context.Context, id int64, frozen bool) error {
	query := `
		UPDATE accounts
		SET frozen = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, frozen, id)
	if err != nil {
		return fmt.Errorf("failed to set frozen for account %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// GetBalance retrieves one account's balance row for a currency
func (r *AccountRepository) GetBalance(ctx context.Context, accountID int64, currency models.Currency) (*models.AccountBalance, error) {
	query := `
		SELECT account_id, currency, balance, invested, wagered,
		       net_profit, bankroll_profit, hightide, staking_profit
		FROM account_balances
		WHERE account_id = $1 AND currency = $2
	`

	var b models.AccountBalance
	err := r.q.QueryRow(ctx, query, accountID, currency).Scan(
		&b.AccountID,
		&b.Currency,
		&b.Balance,
		&b.Invested,
		&b.Wagered,
		&b.NetProfit,
		&b.BankrollProfit,
		&b.Hightide,
		&b.StakingProfit,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s balance for account %d: %w", currency, accountID, err)
	}

	return &b, nil
}

// Credit adds to the spendable balance
func (r *AccountRepository) Credit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	if amount <= 0 {
		return models.ErrInvalidAmount
	}

	query := `
		UPDATE account_balances
		SET balance = balance + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, amount, accountID, currency)
	if err != nil {
		return fmt.Errorf("failed to credit account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// Debit subtracts from the spendable balance. The non-negative check
// constraint on the balance column rejects overdrafts.
func (r *AccountRepository) Debit(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	if amount <= 0 {
		return models.ErrInvalidAmount
	}

	query := `
		UPDATE account_balances
		SET balance = balance - $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, amount, accountID, currency)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgCheckViolation) {
			return models.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to debit account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// ApplyBet debits the balance and bumps lifetime wagered in one statement
func (r *AccountRepository) ApplyBet(ctx context.Context, accountID int64, currency models.Currency, amount int64) error {
	query := `
		UPDATE account_balances
		SET balance = balance - $1, wagered = wagered + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, amount, accountID, currency)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgCheckViolation) {
			return models.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to apply bet for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// AddNetProfit adjusts lifetime net profit by delta
func (r *AccountRepository) AddNetProfit(ctx context.Context, accountID int64, currency models.Currency, delta int64) error {
	query := `
		UPDATE account_balances
		SET net_profit = net_profit + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, delta, accountID, currency)
	if err != nil {
		return fmt.Errorf("failed to add net profit for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// AddInvested adjusts the invested balance by delta. The non-negative check
// constraint rejects a withdrawal past zero.
func (r *AccountRepository) AddInvested(ctx context.Context, accountID int64, currency models.Currency, delta int64) error {
	query := `
		UPDATE account_balances
		SET invested = invested + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, delta, accountID, currency)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgCheckViolation) {
			return models.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to adjust invested for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// TotalInvested sums invested balances strictly above minInvested
func (r *AccountRepository) TotalInvested(ctx context.Context, currency models.Currency, minInvested int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(invested), 0)
		FROM account_balances
		WHERE currency = $1 AND invested > $2
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, currency, minInvested).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum invested balances: %w", err)
	}

	return total, nil
}

// ListInvestors returns balance rows with invested strictly above minInvested
func (r *AccountRepository) ListInvestors(ctx context.Context, currency models.Currency, minInvested int64) ([]*models.AccountBalance, error) {
	query := `
		SELECT account_id, currency, balance, invested, wagered,
		       net_profit, bankroll_profit, hightide, staking_profit
		FROM account_balances
		WHERE currency = $1 AND invested > $2
		ORDER BY account_id
	`

	rows, err := r.q.Query(ctx, query, currency, minInvested)
	if err != nil {
		return nil, fmt.Errorf("failed to list investors: %w", err)
	}
	defer rows.Close()

	var investors []*models.AccountBalance
	for rows.Next() {
		var b models.AccountBalance
		err := rows.Scan(
			&b.AccountID,
			&b.Currency,
			&b.Balance,
			&b.Invested,
			&b.Wagered,
			&b.NetProfit,
			&b.BankrollProfit,
			&b.Hightide,
			&b.StakingProfit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investor: %w", err)
		}
		investors = append(investors, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investors: %w", err)
	}

	return investors, nil
}

// AddRoundCut applies one account's share of a round result
func (r *AccountRepository) AddRoundCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error {
	query := `
		UPDATE account_balances
		SET invested = invested + $1, bankroll_profit = bankroll_profit + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, cut, accountID, currency)
	if err != nil {
		return fmt.Errorf("failed to apply round cut for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// AddStakingCut applies one account's share of staking income
func (r *AccountRepository) AddStakingCut(ctx context.Context, accountID int64, currency models.Currency, cut int64) error {
	query := `
		UPDATE account_balances
		SET invested = invested + $1, staking_profit = staking_profit + $1
		WHERE account_id = $2 AND currency = $3
	`

	result, err := r.q.Exec(ctx, query, cut, accountID, currency)
	if err != nil {
		return fmt.Errorf("failed to apply staking cut for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// ApplyDivest sets the high-water mark, credits the balance and debits invested
func (r *AccountRepository) ApplyDivest(ctx context.Context, accountID int64, currency models.Currency, hightide, credit, investedDebit int64) error {
	query := `
		UPDATE account_balances
		SET hightide = $1, balance = balance + $2, invested = invested - $3
		WHERE account_id = $4 AND currency = $5
	`

	result, err := r.q.Exec(ctx, query, hightide, credit, investedDebit, accountID, currency)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgCheckViolation) {
			return models.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to apply divest for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// ApplyDivestAll sets the high-water mark, credits the balance and zeroes invested
func (r *AccountRepository) ApplyDivestAll(ctx context.Context, accountID int64, currency models.Currency, hightide, credit int64) error {
	query := `
		UPDATE account_balances
		SET hightide = $1, balance = balance + $2, invested = 0
		WHERE account_id = $3 AND currency = $4
	`

	result, err := r.q.Exec(ctx, query, hightide, credit, accountID, currency)
	if err != nil {
		return fmt.Errorf("failed to apply full divest for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}

// ApplyWeeklyCommission sets the high-water mark and debits invested
func (r *AccountRepository) ApplyWeeklyCommission(ctx context.Context, accountID int64, currency models.Currency, hightide, commission int64) error {
	query := `
		UPDATE account_balances
		SET hightide = $1, invested = invested - $2
		WHERE account_id = $3 AND currency = $4
	`

	result, err := r.q.Exec(ctx, query, hightide, commission, accountID, currency)
	if err != nil {
		if database.IsConstraintViolation(err, database.PgCheckViolation) {
			return models.ErrInsufficientBalance
		}
		return fmt.Errorf("failed to apply weekly commission for account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserDoesNotExist
	}

	return nil
}
