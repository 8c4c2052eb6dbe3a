package service

import (
	"context"
	"errors"
	"time"

	"bankroll/config"
	"bankroll/events"
	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

// errStakingCorrupt stops the staking loop when the pool totals go negative.
// That state means the feed or the books are wrong, and continuing would
// distribute phantom income.
var errStakingCorrupt = errors.New("staking pool totals are negative")

type stakingService struct {
	uowFactory UnitOfWorkFactory
}

// NewStakingService creates a new staking service
func NewStakingService(uowFactory UnitOfWorkFactory) StakingService {
	return &stakingService{
		uowFactory: uowFactory,
	}
}

// Run consumes the staking feed until the context is canceled. After a batch
// it waits the longer interval to let the wallet settle; when the feed was
// empty it polls again sooner.
func (s *stakingService) Run(ctx context.Context) error {
	cfg := config.Get()

	for {
		processed, err := s.processBatch(ctx)
		if err != nil {
			if errors.Is(err, errStakingCorrupt) {
				log.WithError(err).Error("staking loop halted")
				return err
			}
			log.WithError(err).Error("staking batch failed, will retry")
		}

		wait := cfg.StakingIdleInterval
		if processed > 0 {
			wait = cfg.StakingBatchInterval
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// processBatch applies every unprocessed feed row in one transaction: pool
// totals, held-buffer netting, commission, distribution and the processed
// stamps all commit together or not at all.
func (s *stakingService) processBatch(ctx context.Context) (int, error) {
	cfg := config.Get()

	processed := 0
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		processed = 0

		rows, err := uow.StakeRepository().ListUnprocessed(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		pool, err := uow.StakeRepository().GetPool(ctx)
		if err != nil {
			return err
		}

		sum := applyFeedRows(pool, rows)
		if pool.StakeTotal < 0 || pool.StakeCount < 0 {
			log.WithFields(log.Fields{
				"stakeTotal": pool.StakeTotal,
				"stakeCount": pool.StakeCount,
			}).Error("staking pool totals went negative")
			return errStakingCorrupt
		}

		distributable := netHeld(pool, sum)

		if distributable > 0 {
			commission := percentageOf(distributable, cfg.StakeCommissionPercentage)
			if commission > 0 {
				if err := takeCommission(ctx, uow, cfg.HouseAccountID, cfg.HouseAccountID, commission, models.ReasonStakeCommission, models.CurrencyClam); err != nil {
					return err
				}
			}

			if err := s.distributeIncome(ctx, uow, distributable-commission); err != nil {
				return err
			}

			uow.EventBus().Publish(events.StakingIncomeEvent{
				Amount:     distributable,
				StakeTotal: pool.StakeTotal,
			})
		}

		if err := uow.StakeRepository().UpdatePool(ctx, pool); err != nil {
			return err
		}

		ids := make([]int64, len(rows))
		for i, row := range rows {
			ids[i] = row.ID
		}
		if err := uow.StakeRepository().MarkProcessed(ctx, ids); err != nil {
			return err
		}

		processed = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if processed > 0 {
		log.WithField("rows", processed).Info("applied staking batch")
	}
	return processed, nil
}

// distributeIncome shares positive staking income across invested accounts.
// The staking wallet holds the clam bankroll, so income always lands on clam
// balances.
func (s *stakingService) distributeIncome(ctx context.Context, uow UnitOfWork, income int64) error {
	if income <= 0 {
		return nil
	}

	currency := models.CurrencyClam
	dust := currency.DustThreshold()

	total, err := uow.AccountRepository().TotalInvested(ctx, currency, dust)
	if err != nil {
		return err
	}
	if total == 0 {
		log.WithField("income", income).Warn("staking income with empty bankroll, nothing distributed")
		return nil
	}

	investors, err := uow.AccountRepository().ListInvestors(ctx, currency, dust)
	if err != nil {
		return err
	}

	for _, investor := range investors {
		cut := proportionalCut(investor.Invested, income, total)
		if cut <= 0 {
			continue
		}
		if err := uow.AccountRepository().AddStakingCut(ctx, investor.AccountID, currency, cut); err != nil {
			return err
		}
	}

	return nil
}

// applyFeedRows folds a batch into the pool counters and returns the batch
// sum. Orphans arrive as rows with the opposite sign of the stake they undo.
func applyFeedRows(pool *models.StakingPool, rows []*models.StakeFeedRow) int64 {
	var sum int64
	for _, row := range rows {
		sum += row.Amount
		pool.StakeTotal += row.Amount
		switch row.Status {
		case models.StakeStatusOrphan:
			pool.OrphanCount++
			pool.StakeCount--
		default:
			pool.StakeCount++
		}
	}
	return sum
}

// netHeld nets a batch sum against the held liability buffer and returns the
// distributable remainder. Negative batches never reach the bankroll; they
// accumulate in held and eat into later positive batches until repaid.
func netHeld(pool *models.StakingPool, sum int64) int64 {
	if sum < 0 {
		pool.Held += sum
		return 0
	}
	if pool.Held < 0 {
		if sum >= -pool.Held {
			sum += pool.Held
			pool.Held = 0
			return sum
		}
		pool.Held += sum
		return 0
	}
	return sum
}
