package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the collection job on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler for the given job.
func NewScheduler(job *RefreshJob, interval time.Duration, logger zerolog.Logger) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		job:       job,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins periodic collection. The first cycle runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		s.job.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling collection job: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("collection scheduler started")
	return nil
}

// Stop halts periodic collection, waiting for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info().Msg("collection scheduler stopped")
}
