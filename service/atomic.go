package service

import (
	"context"

	"bankroll/database"
	log "github.com/sirupsen/logrus"
)

// runAtomic executes fn inside a unit of work and retries the whole unit from
// a fresh transaction whenever Postgres reports a deadlock or serialization
// failure. Every balance-moving operation goes through here so that a write
// conflict can never surface to a caller as a spurious failure.
func runAtomic(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	for {
		uow := factory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		err := fn(uow)
		if err == nil {
			err = uow.Commit()
			if err == nil {
				return nil
			}
		}

		uow.Rollback()

		if database.IsWriteConflict(err) {
			log.WithError(err).Warn("write conflict, retrying transaction")
			continue
		}
		return err
	}
}

// runStatement is the single-statement form of runAtomic: one repository call
// in its own short unit of work, with the same write-conflict retry. Call
// sites that use it are one statement, not multi-step units.
func runStatement(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	return runAtomic(ctx, factory, fn)
}
