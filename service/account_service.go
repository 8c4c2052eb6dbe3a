package service

import (
	"context"

	"bankroll/models"
	log "github.com/sirupsen/logrus"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateAccount retrieves an account by username or creates it with
// zeroed balance rows for every currency
func (s *accountService) GetOrCreateAccount(ctx context.Context, username string) (*models.Account, error) {
	var account *models.Account
	err := runAtomic(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		account, err = uow.AccountRepository().GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if account != nil {
			return nil
		}

		account, err = uow.AccountRepository().Create(ctx, username, models.RoleUser)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"accountId": account.ID,
			"username":  account.Username,
		}).Info("created account")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// SetFrozen freezes or unfreezes an account. A frozen account keeps its
// funds; only the operations that need the owner's intent are blocked.
func (s *accountService) SetFrozen(ctx context.Context, accountID int64, frozen bool) error {
	return runStatement(ctx, s.uowFactory, func(uow UnitOfWork) error {
		return uow.AccountRepository().SetFrozen(ctx, accountID, frozen)
	})
}
