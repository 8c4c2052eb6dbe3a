package cmd

import (
	"context"
	"fmt"
	"time"

	"bankroll/config"
	"bankroll/database"
	"bankroll/events"
	"bankroll/jobs"
	"bankroll/repository"
	"bankroll/service"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	log.Info("connecting to database")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("running migrations")
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	weeklyService := service.NewWeeklyService(uowFactory)
	stakingService := service.NewStakingService(uowFactory)

	subscribeLogging(eventBus)

	scheduler := jobs.NewScheduler(weeklyService)
	scheduler.Start(ctx)

	stakingDone := make(chan error, 1)
	go func() {
		stakingDone <- stakingService.Run(ctx)
	}()

	log.WithField("environment", cfg.Environment).Info("ledger is running")

	select {
	case <-ctx.Done():
	case err := <-stakingDone:
		if err != nil && err != context.Canceled {
			log.WithError(err).Error("staking loop exited")
		}
	}

	log.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("shutdown completed")
	}

	return nil
}

// subscribeLogging attaches operational log lines to the ledger's events.
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeStakingIncome, func(ctx context.Context, e events.Event) {
		ev := e.(events.StakingIncomeEvent)
		log.WithFields(log.Fields{
			"amount":     ev.Amount,
			"stakeTotal": ev.StakeTotal,
		}).Info("staking income distributed")
	})

	bus.Subscribe(events.EventTypeRoundDistributed, func(ctx context.Context, e events.Event) {
		ev := e.(events.RoundDistributedEvent)
		log.WithFields(log.Fields{
			"roundId":   ev.RoundID,
			"currency":  ev.Currency,
			"profit":    ev.RoundProfit,
			"investors": ev.Investors,
		}).Info("round result distributed")
	})

	bus.Subscribe(events.EventTypePrizePayout, func(ctx context.Context, e events.Event) {
		ev := e.(events.PrizePayoutEvent)
		log.WithFields(log.Fields{
			"week":     ev.Week,
			"year":     ev.Year,
			"currency": ev.Currency,
			"total":    ev.Total,
		}).Info("weekly prizes paid")
	})

	bus.Subscribe(events.EventTypeCommissionSweep, func(ctx context.Context, e events.Event) {
		ev := e.(events.CommissionSweepEvent)
		log.WithFields(log.Fields{
			"currency": ev.Currency,
			"users":    ev.Users,
			"total":    ev.Total,
		}).Info("weekly commission swept")
	})
}
