package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/forecast"
	"github.com/aircast/aircast/internal/observation"
)

// ServiceConfig holds configuration for the prediction service.
type ServiceConfig struct {
	Resolver *observation.Resolver
	Engine   *forecast.Engine
	Logger   zerolog.Logger
}

// Service produces multi-horizon PM2.5 predictions from partial inputs.
type Service struct {
	resolver *observation.Resolver
	engine   *forecast.Engine
	logger   zerolog.Logger
}

// NewService creates a new prediction service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		resolver: cfg.Resolver,
		engine:   cfg.Engine,
		logger:   cfg.Logger,
	}
}

// Predict resolves missing input fields, builds features, and forecasts all
// supported horizons. Pipeline failures are converted into an error-status
// Result; this method never returns an error to its caller.
func (s *Service) Predict(ctx context.Context, partial observation.Partial, key *observation.Key) Result {
	resolved := s.resolver.Resolve(ctx, partial, key)

	if resolved.Tier.Degraded() {
		s.logger.Warn().
			Str("tier", string(resolved.Tier)).
			Msg("prediction input resolved from fallback tier")
	}

	features, err := forecast.BuildFeatures(resolved.Observation)
	if err != nil {
		return s.errorResult(fmt.Errorf("building features: %w", err))
	}

	predictions, err := s.engine.Forecast(features)
	if err != nil {
		return s.errorResult(fmt.Errorf("running forecast: %w", err))
	}

	obs := resolved.Observation
	return Result{
		Status:      StatusSuccess,
		Predictions: predictions,
		Input: &InputEcho{
			PM25:             obs.PM25,
			Temperature:      obs.Temperature,
			WindSpeed:        obs.WindSpeed,
			RelativeHumidity: obs.RelativeHumidity,
			Timestamp:        obs.Timestamp.Format(time.RFC3339),
		},
	}
}

func (s *Service) errorResult(err error) Result {
	s.logger.Error().Err(err).Msg("prediction failed")
	return Result{
		Status:  StatusError,
		Message: fmt.Sprintf("prediction failed: %v", err),
	}
}
