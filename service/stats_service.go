package service

import (
	"context"
	"fmt"

	"bankroll/models"
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// GetAccountStats returns one account's stats in satoshis
func (s *statsService) GetAccountStats(ctx context.Context, accountID int64, currency models.Currency) (*models.AccountStats, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}

	var stats *models.AccountStats
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		account, err := uow.AccountRepository().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return models.ErrUserDoesNotExist
		}

		balance, err := uow.AccountRepository().GetBalance(ctx, accountID, currency)
		if err != nil {
			return err
		}
		if balance == nil {
			return models.ErrUserDoesNotExist
		}

		siteWagered, siteProfit, err := uow.StatsRepository().GetSiteTotals(ctx, currency)
		if err != nil {
			return err
		}

		siteInvested, err := uow.AccountRepository().TotalInvested(ctx, currency, 0)
		if err != nil {
			return err
		}

		stats = &models.AccountStats{
			Username:       account.Username,
			Balance:        balance.Balance / models.UnitScale,
			Invested:       balance.Invested / models.UnitScale,
			Wagered:        balance.Wagered / models.UnitScale,
			NetProfit:      balance.NetProfit / models.UnitScale,
			BankrollProfit: balance.BankrollProfit / models.UnitScale,
			SiteWagered:    siteWagered / models.UnitScale,
			SiteProfit:     siteProfit / models.UnitScale,
			SiteInvested:   siteInvested / models.UnitScale,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetSiteStats returns the site-wide aggregate in satoshis
func (s *statsService) GetSiteStats(ctx context.Context, currency models.Currency) (*models.SiteStats, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}

	var stats *models.SiteStats
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		wagered, profit, err := uow.StatsRepository().GetSiteTotals(ctx, currency)
		if err != nil {
			return err
		}

		invested, err := uow.AccountRepository().TotalInvested(ctx, currency, 0)
		if err != nil {
			return err
		}

		stats = &models.SiteStats{
			Currency: currency,
			Wagered:  wagered / models.UnitScale,
			Profit:   profit / models.UnitScale,
			Invested: invested / models.UnitScale,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
