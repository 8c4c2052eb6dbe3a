package service

import (
	"context"
	"fmt"

	"bankroll/config"
	"bankroll/events"
	"bankroll/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type investService struct {
	uowFactory UnitOfWorkFactory
}

// NewInvestService creates a new invest service
func NewInvestService(uowFactory UnitOfWorkFactory) InvestService {
	return &investService{
		uowFactory: uowFactory,
	}
}

// QueueInvest queues a request to move balance into the bankroll. The funds
// are debited immediately so they cannot be spent while the request waits for
// the round boundary; they land on the invested balance at settlement.
func (s *investService) QueueInvest(ctx context.Context, accountID int64, amountSatoshis int64, allFunds bool, currency models.Currency) (*models.Investment, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	if !allFunds && amountSatoshis <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var investment *models.Investment
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		account, balance, err := s.loadForRequest(ctx, uow, accountID, currency)
		if err != nil {
			return err
		}

		amount := amountSatoshis * models.UnitScale
		if allFunds {
			amount = balance.Balance
		}
		if amount <= 0 || amount > balance.Balance {
			return models.ErrInsufficientBalance
		}

		if err := uow.AccountRepository().Debit(ctx, accountID, currency, amount); err != nil {
			return err
		}

		poolTotal, err := uow.AccountRepository().TotalInvested(ctx, currency, 0)
		if err != nil {
			return err
		}

		investment = &models.Investment{
			ID:            uuid.NewString(),
			AccountID:     accountID,
			Username:      account.Username,
			Amount:        amount,
			Action:        models.ActionInvest,
			AllFunds:      allFunds,
			InvestedPrev:  balance.Invested,
			PoolTotalPrev: poolTotal,
			Currency:      currency,
		}
		return uow.InvestmentRepository().Create(ctx, investment)
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

// QueueDivest queues a request to move invested funds back to balance. No
// funds move until settlement, which recomputes against the invested balance
// of that moment.
func (s *investService) QueueDivest(ctx context.Context, accountID int64, amountSatoshis int64, allFunds bool, currency models.Currency) (*models.Investment, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	if !allFunds && amountSatoshis <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var investment *models.Investment
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		account, balance, err := s.loadForRequest(ctx, uow, accountID, currency)
		if err != nil {
			return err
		}

		amount := amountSatoshis * models.UnitScale
		if allFunds {
			amount = balance.Invested
		}
		if amount <= 0 || amount > balance.Invested {
			return models.ErrInsufficientBalance
		}

		poolTotal, err := uow.AccountRepository().TotalInvested(ctx, currency, 0)
		if err != nil {
			return err
		}

		investment = &models.Investment{
			ID:            uuid.NewString(),
			AccountID:     accountID,
			Username:      account.Username,
			Amount:        amount,
			Action:        models.ActionDivest,
			AllFunds:      allFunds,
			InvestedPrev:  balance.Invested,
			PoolTotalPrev: poolTotal,
			Currency:      currency,
		}
		return uow.InvestmentRepository().Create(ctx, investment)
	})
	if err != nil {
		return nil, err
	}

	return investment, nil
}

// loadForRequest fetches the account and balance row and applies the checks
// shared by both request kinds.
func (s *investService) loadForRequest(ctx context.Context, uow UnitOfWork, accountID int64, currency models.Currency) (*models.Account, *models.AccountBalance, error) {
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, models.ErrUserDoesNotExist
	}
	if account.Frozen {
		return nil, nil, models.ErrAccountFrozen
	}

	pending, err := uow.InvestmentRepository().HasPending(ctx, accountID, currency)
	if err != nil {
		return nil, nil, err
	}
	if pending {
		return nil, nil, models.ErrInvestmentAlreadyMade
	}

	balance, err := uow.AccountRepository().GetBalance(ctx, accountID, currency)
	if err != nil {
		return nil, nil, err
	}
	if balance == nil {
		return nil, nil, models.ErrUserDoesNotExist
	}

	return account, balance, nil
}

// SettlePendingInvests applies queued invest requests, one transaction each,
// so a bad request cannot hold up the rest of the queue.
func (s *investService) SettlePendingInvests(ctx context.Context, currency models.Currency) (int, error) {
	pending, err := s.listPending(ctx, models.ActionInvest, currency)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, request := range pending {
		err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
			if err := uow.AccountRepository().AddInvested(ctx, request.AccountID, currency, request.Amount); err != nil {
				return err
			}
			return uow.InvestmentRepository().Complete(ctx, request.ID,
				request.Amount, 0, request.InvestedPrev, request.PoolTotalPrev)
		})
		if err != nil {
			log.WithError(err).WithField("requestId", request.ID).Error("failed to settle invest request")
			continue
		}
		settled++
	}

	return settled, nil
}

// SettlePendingDivests applies queued divest requests, one transaction each.
// A request that asks for more than is still invested is clamped to the
// remaining stake; one that cannot be satisfied at all fails with
// ErrInsufficientBalance and stays queued. Commission is owed on bankroll
// profit above the account's high-water mark and always reaches the house in
// full: it is taken from the remaining invested balance when that covers it,
// and out of the withdrawal itself when it does not.
func (s *investService) SettlePendingDivests(ctx context.Context, currency models.Currency) (int, error) {
	pending, err := s.listPending(ctx, models.ActionDivest, currency)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, request := range pending {
		err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
			return s.settleDivest(ctx, uow, request)
		})
		if err != nil {
			log.WithError(err).WithField("requestId", request.ID).Error("failed to settle divest request")
			continue
		}
		settled++
	}

	return settled, nil
}

func (s *investService) settleDivest(ctx context.Context, uow UnitOfWork, request *models.Investment) error {
	cfg := config.Get()
	currency := request.Currency

	balance, err := uow.AccountRepository().GetBalance(ctx, request.AccountID, currency)
	if err != nil {
		return err
	}
	if balance == nil {
		return models.ErrUserDoesNotExist
	}

	// An over-ask is served with whatever is still invested rather than
	// rejected outright; an empty stake cannot be divested at all.
	total := request.Amount
	if request.AllFunds || total > balance.Invested {
		total = balance.Invested
	}
	if total <= 0 {
		return models.ErrInsufficientBalance
	}

	var commission int64
	if balance.BankrollProfit > balance.Hightide {
		commission = percentageOf(balance.BankrollProfit-balance.Hightide, cfg.CommissionPercentage)
	}

	payable := total
	switch {
	case commission <= 0:
		// Nothing owed, the high-water mark stays where it was.
		if err := uow.AccountRepository().ApplyDivest(ctx, request.AccountID, currency, balance.Hightide, total, total); err != nil {
			return err
		}
		commission = 0

	case request.AllFunds:
		payable = total - commission
		if payable < 0 {
			return models.ErrInsufficientBalance
		}
		if err := uow.AccountRepository().ApplyDivestAll(ctx, request.AccountID, currency, balance.BankrollProfit, payable); err != nil {
			return err
		}

	case balance.Invested-total < commission:
		// The remainder cannot cover the commission, so the shortfall comes
		// out of the withdrawal and the invested balance is emptied.
		shortfall := commission - (balance.Invested - total)
		payable = total - shortfall
		if payable < 0 {
			return models.ErrInsufficientBalance
		}
		if err := uow.AccountRepository().ApplyDivestAll(ctx, request.AccountID, currency, balance.BankrollProfit, payable); err != nil {
			return err
		}

	default:
		if err := uow.AccountRepository().ApplyDivest(ctx, request.AccountID, currency, balance.BankrollProfit, total, total+commission); err != nil {
			return err
		}
	}

	if commission > 0 {
		if err := takeCommission(ctx, uow, cfg.HouseAccountID, request.AccountID, commission, models.ReasonDivestCommission, currency); err != nil {
			return err
		}
	}

	poolTotal, err := uow.AccountRepository().TotalInvested(ctx, currency, 0)
	if err != nil {
		return err
	}

	return uow.InvestmentRepository().Complete(ctx, request.ID, payable, commission, balance.Invested, poolTotal)
}

// DistributeRoundResult shares a finished round's profit or loss across
// invested accounts in proportion to their stakes, against a single snapshot
// of the pool total. Dust stakes sit out. A loss cut is clamped so no account
// is driven below zero invested; the clamped remainder stays with the house
// books and is logged.
func (s *investService) DistributeRoundResult(ctx context.Context, roundID int64, currency models.Currency, totalBetSatoshis, totalPaidSatoshis int64) error {
	wagered := totalBetSatoshis * models.UnitScale
	profit := (totalBetSatoshis - totalPaidSatoshis) * models.UnitScale

	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if wagered != 0 || profit != 0 {
			if err := uow.StatsRepository().AddSiteTotals(ctx, currency, wagered, profit); err != nil {
				return err
			}
		}
		if profit == 0 {
			return nil
		}

		dust := currency.DustThreshold()
		total, err := uow.AccountRepository().TotalInvested(ctx, currency, dust)
		if err != nil {
			return err
		}
		if total == 0 {
			log.WithFields(log.Fields{
				"roundId":  roundID,
				"currency": currency,
				"profit":   profit,
			}).Warn("round profit with empty bankroll, nothing distributed")
			return nil
		}

		investors, err := uow.AccountRepository().ListInvestors(ctx, currency, dust)
		if err != nil {
			return err
		}

		for _, investor := range investors {
			cut := proportionalCut(investor.Invested, profit, total)
			if cut < -investor.Invested {
				log.WithFields(log.Fields{
					"accountId": investor.AccountID,
					"cut":       cut,
					"invested":  investor.Invested,
				}).Warn("loss cut clamped to invested balance")
				cut = -investor.Invested
			}
			if cut == 0 {
				continue
			}
			if err := uow.AccountRepository().AddRoundCut(ctx, investor.AccountID, currency, cut); err != nil {
				return err
			}
		}

		uow.EventBus().Publish(events.RoundDistributedEvent{
			RoundID:     roundID,
			Currency:    currency,
			RoundProfit: profit,
			Investors:   len(investors),
		})
		return nil
	})
}

// listPending reads the queue in its own short transaction.
func (s *investService) listPending(ctx context.Context, action models.InvestmentAction, currency models.Currency) ([]*models.Investment, error) {
	var pending []*models.Investment
	err := runStatement(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		pending, err = uow.InvestmentRepository().ListPending(ctx, action, currency)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// takeCommission credits the house and writes the audit row.
func takeCommission(ctx context.Context, uow UnitOfWork, houseAccountID, fromAccountID, amount int64, reason string, currency models.Currency) error {
	if err := uow.AccountRepository().Credit(ctx, houseAccountID, currency, amount); err != nil {
		return err
	}
	return uow.CommissionRepository().Create(ctx, &models.Commission{
		ID:            uuid.NewString(),
		AccountID:     houseAccountID,
		Amount:        amount,
		Reason:        reason,
		FromAccountID: fromAccountID,
		Currency:      currency,
	})
}
