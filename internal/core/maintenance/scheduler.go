package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/adaptiveops/optimizer-backend-go/internal/core/optimizer"
	"github.com/adaptiveops/optimizer-backend-go/internal/core/tunables"
)

// AlertJanitor removes stale resolved alerts
type AlertJanitor interface {
	Cleanup() int
}

// Config contains maintenance schedules
type Config struct {
	PruneSchedule   string
	SummarySchedule string
	AuditRetention  time.Duration
}

// Scheduler runs periodic housekeeping: pruning the adjustment audit
// trail, cleaning up resolved alerts and logging an analytics summary
type Scheduler struct {
	config  Config
	logger  *logrus.Logger
	cron    *cron.Cron
	store   *tunables.SQLiteStore
	loop    *optimizer.Loop
	janitor AlertJanitor
}

// NewScheduler creates a maintenance scheduler. Store and janitor may be
// nil; their jobs are then skipped.
func NewScheduler(config Config, store *tunables.SQLiteStore, loop *optimizer.Loop, janitor AlertJanitor, logger *logrus.Logger) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
			cron.Recover(cron.DiscardLogger),
		),
	)

	return &Scheduler{
		config:  config,
		logger:  logger,
		cron:    c,
		store:   store,
		loop:    loop,
		janitor: janitor,
	}
}

// Start registers the jobs and starts the cron runner
func (s *Scheduler) Start() error {
	if s.store != nil || s.janitor != nil {
		if _, err := s.cron.AddFunc(s.config.PruneSchedule, s.prune); err != nil {
			return fmt.Errorf("invalid prune schedule: %w", err)
		}
	}

	if s.loop != nil {
		if _, err := s.cron.AddFunc(s.config.SummarySchedule, s.logSummary); err != nil {
			return fmt.Errorf("invalid summary schedule: %w", err)
		}
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"prune_schedule":   s.config.PruneSchedule,
		"summary_schedule": s.config.SummarySchedule,
	}).Info("Maintenance scheduler started")

	return nil
}

// Stop stops the cron runner and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Maintenance scheduler stopped")
}

func (s *Scheduler) prune() {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := s.store.PruneAudit(ctx, s.config.AuditRetention)
		if err != nil {
			s.logger.WithError(err).Error("Failed to prune adjustment audit")
		} else if removed > 0 {
			s.logger.WithField("removed", removed).Info("Pruned adjustment audit")
		}
	}

	if s.janitor != nil {
		if removed := s.janitor.Cleanup(); removed > 0 {
			s.logger.WithField("removed", removed).Info("Cleaned up resolved alerts")
		}
	}
}

func (s *Scheduler) logSummary() {
	report := s.loop.GetAnalytics()
	if report.Status == optimizer.ReportStatusNoData {
		return
	}

	s.logger.WithFields(logrus.Fields{
		"trend":         report.OverallTrend,
		"effectiveness": report.Effectiveness,
		"period_s":      report.PeriodSeconds,
	}).Info("Optimization summary")
}
