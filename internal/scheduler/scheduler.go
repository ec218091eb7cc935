package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MetricsPublisher recomputes and exports the population gauges.
type MetricsPublisher interface {
	PublishUsageMetrics(ctx context.Context) error
}

type Scheduler struct {
	ctx       context.Context
	publisher MetricsPublisher
	logger    *logrus.Logger
	cron      *cron.Cron
}

func NewScheduler(ctx context.Context, publisher MetricsPublisher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		ctx:       ctx,
		publisher: publisher,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start the scheduler
func (s *Scheduler) Start() error {
	// Refresh the analytics gauges every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.refresh)
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// refresh recomputes the population gauges with a bounded deadline
func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Minute)
	defer cancel()

	if err := s.publisher.PublishUsageMetrics(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to refresh analytics metrics")
	}
}

// Stop the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
