// Package jobs wires the weekly background cycle onto a cron schedule.
package jobs

import (
	"context"
	"time"

	"bankroll/models"
	"bankroll/service"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the weekly commission and prize jobs.
type Scheduler struct {
	cron          *cron.Cron
	weeklyService service.WeeklyService
}

// NewScheduler creates the job scheduler. Schedules run in UTC, matching the
// ISO week boundaries the prize cycle is defined over.
func NewScheduler(weeklyService service.WeeklyService) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		weeklyService: weeklyService,
	}
}

// Start registers and starts all background jobs.
func (s *Scheduler) Start(ctx context.Context) {
	// Queue the commission sweep Monday 00:05, just after the ISO week turns.
	s.cron.AddFunc("5 0 * * 1", func() {
		for _, currency := range models.Currencies() {
			if err := s.weeklyService.QueueCommission(ctx, currency); err != nil {
				log.WithError(err).WithField("currency", currency).Error("failed to queue weekly commission")
			}
		}
	})

	// Work the queue and pay last week's prizes every hour. Both are
	// idempotent, so re-running after a crash is safe.
	s.cron.AddFunc("30 * * * *", func() {
		for _, currency := range models.Currencies() {
			if err := s.weeklyService.RunCommission(ctx, currency); err != nil {
				log.WithError(err).WithField("currency", currency).Error("weekly commission run failed")
			}
			if err := s.weeklyService.PayoutPrizes(ctx, currency); err != nil {
				log.WithError(err).WithField("currency", currency).Error("weekly prize payout failed")
			}
		}
	})

	s.cron.Start()
	log.Info("job scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("job scheduler stopped")
}
