package service

import (
	"context"
	"fmt"

	"bankroll/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// PlaceBet debits the bet and records a play for the round. The bet and the
// balance debit land in the same transaction, so a failed debit leaves no
// orphaned play behind.
func (s *ledgerService) PlaceBet(ctx context.Context, accountID, roundID int64, betSatoshis int64, autoCashOut *int64, currency models.Currency) (*models.Play, error) {
	if !currency.Valid() {
		return nil, fmt.Errorf("unknown currency %q", currency)
	}
	if betSatoshis <= 0 {
		return nil, models.ErrInvalidAmount
	}

	amount := betSatoshis * models.UnitScale
	if amount%currency.MinBetUnit() != 0 {
		return nil, models.ErrInvalidAmount
	}

	play := &models.Play{
		AccountID:   accountID,
		RoundID:     roundID,
		Currency:    currency,
		Bet:         amount,
		AutoCashOut: autoCashOut,
	}

	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		if err := uow.AccountRepository().ApplyBet(ctx, accountID, currency, amount); err != nil {
			return err
		}
		if err := uow.AccountRepository().AddNetProfit(ctx, accountID, currency, -amount); err != nil {
			return err
		}
		return uow.PlayRepository().Create(ctx, play)
	})
	if err != nil {
		return nil, err
	}

	return play, nil
}

// CashOut credits the cashout amount against a live play. The conditional
// play update makes a duplicate request fail before any balance moves.
func (s *ledgerService) CashOut(ctx context.Context, accountID, playID int64, amountSatoshis int64, currency models.Currency) error {
	if amountSatoshis <= 0 {
		return models.ErrInvalidAmount
	}
	amount := amountSatoshis * models.UnitScale

	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		bet, err := uow.PlayRepository().SetCashOut(ctx, playID, amount)
		if err != nil {
			return err
		}

		if err := uow.AccountRepository().Credit(ctx, accountID, currency, amount); err != nil {
			return err
		}
		if err := uow.AccountRepository().AddNetProfit(ctx, accountID, currency, amount); err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"accountId": accountID,
			"playId":    playID,
			"bet":       bet,
			"cashOut":   amount,
		}).Debug("play cashed out")
		return nil
	})
}

// Transfer tips another account. The caller-supplied id is the replay guard:
// retrying a delivery failure either lands the tip once or fails with
// ErrDuplicateTransfer.
func (s *ledgerService) Transfer(ctx context.Context, id string, fromAccountID int64, toUsername string, amountSatoshis int64, currency models.Currency) error {
	if amountSatoshis <= 0 {
		return models.ErrInvalidAmount
	}
	amount := amountSatoshis * models.UnitScale

	return runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		sender, err := uow.AccountRepository().GetByID(ctx, fromAccountID)
		if err != nil {
			return err
		}
		if sender == nil {
			return models.ErrUserDoesNotExist
		}
		if sender.Frozen {
			return models.ErrAccountFrozen
		}

		recipient, err := uow.AccountRepository().GetByUsername(ctx, toUsername)
		if err != nil {
			return err
		}
		if recipient == nil {
			return models.ErrRecipientNotFound
		}
		if recipient.ID == fromAccountID {
			return models.ErrInvalidAmount
		}

		if err := uow.AccountRepository().Debit(ctx, fromAccountID, currency, amount); err != nil {
			return err
		}
		if err := uow.AccountRepository().Credit(ctx, recipient.ID, currency, amount); err != nil {
			return err
		}

		return uow.TransferRepository().Create(ctx, &models.Transfer{
			ID:            id,
			FromAccountID: fromAccountID,
			ToAccountID:   recipient.ID,
			Amount:        amount,
			Currency:      currency,
		})
	})
}

// TransferMany tips several accounts at once. In split mode the sender is
// debited the full amount and each recipient is credited the floor share,
// so the integer remainder is not distributed; in each mode every recipient
// gets the full amount. Unknown usernames are skipped, and the whole tip
// fails only when nobody is left.
func (s *ledgerService) TransferMany(ctx context.Context, fromAccountID int64, toUsernames []string, amountSatoshis int64, mode models.DivyMode, currency models.Currency) ([]models.TransferSplitResult, error) {
	if mode != models.DivySplit && mode != models.DivyEach {
		return nil, models.ErrIncorrectDivyOption
	}
	if amountSatoshis <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if len(toUsernames) == 0 {
		return nil, models.ErrNoRecipients
	}

	var results []models.TransferSplitResult
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		results = nil

		sender, err := uow.AccountRepository().GetByID(ctx, fromAccountID)
		if err != nil {
			return err
		}
		if sender == nil {
			return models.ErrUserDoesNotExist
		}
		if sender.Frozen {
			return models.ErrAccountFrozen
		}

		seen := make(map[int64]bool)
		var recipients []*models.Account
		for _, username := range toUsernames {
			account, err := uow.AccountRepository().GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			if account == nil || account.ID == fromAccountID || seen[account.ID] {
				continue
			}
			seen[account.ID] = true
			recipients = append(recipients, account)
		}
		if len(recipients) == 0 {
			return models.ErrNoRecipients
		}

		perSatoshis := amountSatoshis
		total := amountSatoshis * models.UnitScale * int64(len(recipients))
		if mode == models.DivySplit {
			perSatoshis = amountSatoshis / int64(len(recipients))
			if perSatoshis <= 0 {
				return models.ErrInvalidAmount
			}
			total = amountSatoshis * models.UnitScale
		}
		per := perSatoshis * models.UnitScale

		if err := uow.AccountRepository().Debit(ctx, fromAccountID, currency, total); err != nil {
			return err
		}

		for _, recipient := range recipients {
			if err := uow.AccountRepository().Credit(ctx, recipient.ID, currency, per); err != nil {
				return err
			}
			err := uow.TransferRepository().Create(ctx, &models.Transfer{
				ID:            uuid.NewString(),
				FromAccountID: fromAccountID,
				ToAccountID:   recipient.ID,
				Amount:        per,
				Currency:      currency,
			})
			if err != nil {
				return err
			}
			results = append(results, models.TransferSplitResult{
				ToAccountID: recipient.ID,
				Amount:      per,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
