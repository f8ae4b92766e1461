package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RefreshJob collects observations for all configured target points.
type RefreshJob struct {
	config  RefreshConfig
	service *Service
	logger  zerolog.Logger
}

// NewRefreshJob creates a new collection job.
func NewRefreshJob(config RefreshConfig, service *Service, logger zerolog.Logger) *RefreshJob {
	if len(config.Targets) == 0 {
		config.Targets = DefaultTargets()
	}
	if config.Concurrency == 0 {
		config.Concurrency = 3
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &RefreshJob{
		config:  config,
		service: service,
		logger:  logger,
	}
}

// RefreshResult summarizes one collection cycle.
type RefreshResult struct {
	StartTime   time.Time
	Duration    time.Duration
	TotalPoints int
	Successful  int
	Failed      int
}

// Run collects every configured point through a bounded worker pool.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	start := time.Now()
	points := j.config.AllPoints()
	result := &RefreshResult{
		StartTime:   start,
		TotalPoints: len(points),
	}

	j.logger.Info().
		Int("total_points", len(points)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting collection cycle")

	pointsChan := make(chan Point, len(points))
	outcomes := make(chan bool, len(points))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for point := range pointsChan {
				select {
				case <-ctx.Done():
					return
				default:
					outcomes <- j.collectPoint(ctx, point)
				}
			}
		}()
	}

	for _, p := range points {
		pointsChan <- p
	}
	close(pointsChan)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for ok := range outcomes {
		if ok {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	result.Duration = time.Since(start)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("collection cycle completed")

	return result
}

func (j *RefreshJob) collectPoint(ctx context.Context, point Point) bool {
	pointCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	if _, err := j.service.Collect(pointCtx, point.Lat, point.Lon); err != nil {
		j.logger.Error().Err(err).
			Float64("lat", point.Lat).Float64("lon", point.Lon).
			Msg("point collection failed")
		return false
	}
	return true
}
