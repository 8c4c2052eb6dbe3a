package testutil

import (
	"time"

	"bankroll/models"
	"github.com/google/uuid"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(id int64, username string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        id,
		Username:  username,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestBalance creates a balance row with the given spendable balance,
// in internal units
func CreateTestBalance(accountID int64, currency models.Currency, balance int64) *models.AccountBalance {
	return &models.AccountBalance{
		AccountID: accountID,
		Currency:  currency,
		Balance:   balance,
	}
}

// CreateTestPlay creates a live play for the given bet
func CreateTestPlay(accountID, roundID int64, currency models.Currency, bet int64) *models.Play {
	return &models.Play{
		AccountID: accountID,
		RoundID:   roundID,
		Currency:  currency,
		Bet:       bet,
		CreatedAt: time.Now(),
	}
}

// CreateTestInvestment creates a pending investment request
func CreateTestInvestment(accountID int64, username string, action models.InvestmentAction, amount int64, currency models.Currency) *models.Investment {
	return &models.Investment{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Username:  username,
		Amount:    amount,
		Action:    action,
		Currency:  currency,
		CreatedAt: time.Now(),
	}
}

// CreateTestStakeRow creates an unprocessed stake feed row
func CreateTestStakeRow(address string, amount int64) *models.StakeFeedRow {
	return &models.StakeFeedRow{
		Address:   address,
		Amount:    amount,
		Status:    models.StakeStatusStake,
		CreatedAt: time.Now(),
	}
}
