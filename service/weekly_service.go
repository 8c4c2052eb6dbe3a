package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"bankroll/config"
	"bankroll/events"
	"bankroll/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// prizeRanks is how deep each leaderboard pays.
const prizeRanks = 10

type weeklyService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewWeeklyService creates a new weekly service
func NewWeeklyService(uowFactory UnitOfWorkFactory) WeeklyService {
	return &weeklyService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// Donate moves balance into the current week's prize pool and returns the
// week's running total.
func (s *weeklyService) Donate(ctx context.Context, accountID int64, amountSatoshis int64, currency models.Currency) (int64, error) {
	if !currency.Valid() {
		return 0, fmt.Errorf("unknown currency %q", currency)
	}
	if amountSatoshis <= 0 {
		return 0, models.ErrInvalidAmount
	}
	amount := amountSatoshis * models.UnitScale
	week, year := isoWeek(s.now())

	var total int64
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		account, err := uow.AccountRepository().GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return models.ErrUserDoesNotExist
		}
		if account.Frozen {
			return models.ErrAccountFrozen
		}

		if err := uow.AccountRepository().Debit(ctx, accountID, currency, amount); err != nil {
			return err
		}

		err = uow.WeeklyRepository().CreateDonation(ctx, &models.WeeklyDonation{
			AccountID: accountID,
			Amount:    amount,
			Week:      week,
			Year:      year,
			Currency:  currency,
		})
		if err != nil {
			return err
		}

		total, err = uow.WeeklyRepository().DonatedTotal(ctx, week, year, currency)
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.DonationEvent{
			AccountID: accountID,
			Amount:    amount,
			Currency:  currency,
			WeekTotal: total,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

// QueueCommission queues a commission sweep unless one is already pending
func (s *weeklyService) QueueCommission(ctx context.Context, currency models.Currency) error {
	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		pending, err := uow.WeeklyRepository().PendingCommissionRun(ctx, currency)
		if err != nil {
			return err
		}
		if pending != nil {
			return nil
		}

		_, err = uow.WeeklyRepository().QueueCommissionRun(ctx, currency)
		return err
	})
}

// RunCommission executes the queued commission sweep, if any. Each account is
// swept in its own transaction against a fresh balance read, so a mid-sweep
// crash leaves behind only fully swept accounts and a still-queued run that
// the next invocation resumes.
func (s *weeklyService) RunCommission(ctx context.Context, currency models.Currency) error {
	cfg := config.Get()

	var run *models.WeeklyCommissionRun
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		run, err = uow.WeeklyRepository().PendingCommissionRun(ctx, currency)
		return err
	})
	if err != nil {
		return err
	}
	if run == nil {
		return nil
	}

	var investors []*models.AccountBalance
	err = runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		investors, err = uow.AccountRepository().ListInvestors(ctx, currency, cfg.WeeklyCommissionThreshold)
		return err
	})
	if err != nil {
		return err
	}

	users := 0
	var total int64
	for _, investor := range investors {
		swept, err := s.sweepAccount(ctx, investor.AccountID, currency)
		if err != nil {
			log.WithError(err).WithField("accountId", investor.AccountID).Error("failed to sweep account commission")
			continue
		}
		if swept > 0 {
			users++
			total += swept
		}
	}

	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if err := uow.WeeklyRepository().CompleteCommissionRun(ctx, run.ID, users, total); err != nil {
			return err
		}

		uow.EventBus().Publish(events.CommissionSweepEvent{
			Currency: currency,
			Users:    users,
			Total:    total,
		})
		return nil
	})
}

// sweepAccount takes commission on one account's bankroll profit above its
// high-water mark and advances the mark.
func (s *weeklyService) sweepAccount(ctx context.Context, accountID int64, currency models.Currency) (int64, error) {
	cfg := config.Get()

	var commission int64
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		commission = 0

		balance, err := uow.AccountRepository().GetBalance(ctx, accountID, currency)
		if err != nil {
			return err
		}
		if balance == nil || balance.BankrollProfit <= balance.Hightide {
			return nil
		}

		commission = percentageOf(balance.BankrollProfit-balance.Hightide, cfg.CommissionPercentage)
		if commission <= 0 || commission > balance.Invested {
			commission = 0
			return nil
		}

		err = uow.AccountRepository().ApplyWeeklyCommission(ctx, accountID, currency, balance.BankrollProfit, commission)
		if err != nil {
			return err
		}

		if err := takeCommission(ctx, uow, cfg.HouseAccountID, accountID, commission, models.ReasonWeeklyCommission, currency); err != nil {
			return err
		}

		account, err := uow.AccountRepository().GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		// Audit trail in the investments log, mirroring divest commission.
		status := models.InvestmentStatusComplete
		return uow.InvestmentRepository().Create(ctx, &models.Investment{
			ID:               uuid.NewString(),
			AccountID:        accountID,
			Username:         account.Username,
			Action:           models.ActionWeeklyCommission,
			InvestedPrev:     balance.Invested,
			Status:           &status,
			CommissionAmount: commission,
			Currency:         currency,
		})
	})
	if err != nil {
		return 0, err
	}

	return commission, nil
}

// PayoutPrizes pays the previous week's leaderboard prizes. The completion
// row in the prize log is both the idempotence guard and the record of the
// total disbursed; the whole payout is one transaction, so a crash pays
// either everyone or no one.
func (s *weeklyService) PayoutPrizes(ctx context.Context, currency models.Currency) error {
	week, year := previousISOWeek(s.now())

	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		paid, err := uow.WeeklyRepository().GetPrizeLog(ctx, week, year, currency)
		if err != nil {
			return err
		}
		if paid != nil {
			return nil
		}

		if err := uow.WeeklyRepository().RebuildLeaderboard(ctx, week, year, currency); err != nil {
			return err
		}

		donated, err := uow.WeeklyRepository().DonatedTotal(ctx, week, year, currency)
		if err != nil {
			return err
		}

		// Half the donations fund each of the two leaderboards.
		pool := donated / 2

		var total int64
		if pool > 0 {
			topNet, err := uow.WeeklyRepository().TopNet(ctx, week, year, currency, prizeRanks)
			if err != nil {
				return err
			}
			topWagered, err := uow.WeeklyRepository().TopWagered(ctx, week, year, currency, prizeRanks)
			if err != nil {
				return err
			}

			paidNet, err := s.payBoard(ctx, uow, topNet, models.PrizeTypeNet, pool, week, year, currency)
			if err != nil {
				return err
			}
			paidWagered, err := s.payBoard(ctx, uow, topWagered, models.PrizeTypeWagered, pool, week, year, currency)
			if err != nil {
				return err
			}
			total = paidNet + paidWagered
		}

		err = uow.WeeklyRepository().CreatePrizeLog(ctx, &models.WeeklyPrizeLog{
			Week:     week,
			Year:     year,
			Currency: currency,
			Status:   "complete",
			Total:    total,
		})
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.PrizePayoutEvent{
			Week:     week,
			Year:     year,
			Currency: currency,
			Total:    total,
		})
		return nil
	})
}

// payBoard pays one leaderboard's prizes by descending rank.
func (s *weeklyService) payBoard(ctx context.Context, uow UnitOfWork, entries []*models.LeaderboardEntry, prizeType string, pool int64, week, year int, currency models.Currency) (int64, error) {
	var total int64
	for i, entry := range entries {
		prize := prizeForRank(pool, len(entries), i+1)
		if prize <= 0 {
			continue
		}

		if err := uow.AccountRepository().Credit(ctx, entry.AccountID, currency, prize); err != nil {
			return 0, err
		}
		err := uow.WeeklyRepository().CreatePrize(ctx, &models.WeeklyPrize{
			AccountID: entry.AccountID,
			Amount:    prize,
			Week:      week,
			Year:      year,
			PrizeType: prizeType,
			Currency:  currency,
		})
		if err != nil {
			return 0, err
		}
		total += prize
	}

	return total, nil
}

// prizeForRank returns the prize for one rank of an n-entry board under a
// geometric decay with ratio one half: rank r out of n receives
// pool * 2^(n-r) / (2^n - 1), rounded to nearest. The full series sums to at
// most pool, so a board can never pay out more than its share.
func prizeForRank(pool int64, n, rank int) int64 {
	if pool <= 0 || n <= 0 || rank < 1 || rank > n {
		return 0
	}

	num := new(big.Int).Lsh(big.NewInt(pool), uint(n-rank))
	den := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(n)), big.NewInt(1))

	// Round half up.
	num.Lsh(num, 1).Add(num, den)
	den.Lsh(den, 1)
	return num.Quo(num, den).Int64()
}
