// Package ingest acquires observations from upstream providers and appends
// them to the persisted per-location series.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/observation"
	"github.com/aircast/aircast/internal/station"
	"github.com/aircast/aircast/internal/weather"
)

// ErrNoData means neither station nor weather data could be acquired.
var ErrNoData = errors.New("no station or weather data available for coordinates")

// StationReader supplies the nearest station's latest PM2.5 reading.
type StationReader interface {
	NearestReading(ctx context.Context, lat, lon float64) (*station.Reading, error)
}

// ServiceConfig holds configuration for the ingest service.
type ServiceConfig struct {
	Stations   StationReader
	Weather    weather.Provider
	Repository observation.Repository
	Logger     zerolog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Snapshot is the outcome of one acquisition: the persisted observation
// plus whatever provider data produced it. Warning is set when a source
// was unavailable and a default was substituted.
type Snapshot struct {
	Key         observation.Key
	Observation observation.Observation
	Station     *station.Reading
	Weather     *weather.Observation
	Warning     string
}

// Service combines station and weather data into observations.
type Service struct {
	stations StationReader
	weather  weather.Provider
	repo     observation.Repository
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a new ingest service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		stations: cfg.Stations,
		weather:  cfg.Weather,
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		now:      now,
	}
}

// Collect acquires the nearest station reading and current weather for a
// coordinate, merges them into one observation, and appends it under the
// canonical location key. Either source failing degrades the snapshot
// rather than failing the call; only both failing is an error.
func (s *Service) Collect(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	reading, err := s.stations.NearestReading(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", lat).Float64("lon", lon).
			Msg("station reading unavailable")
		reading = nil
	}

	wobs, err := s.weather.Current(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", lat).Float64("lon", lon).
			Msg("weather data unavailable")
		wobs = nil
	}

	if reading == nil && wobs == nil {
		return nil, ErrNoData
	}

	snapshot := s.merge(reading, wobs)
	snapshot.Key = observation.KeyFor(lat, lon)

	if err := s.repo.Append(ctx, snapshot.Key, snapshot.Observation); err != nil {
		return nil, fmt.Errorf("persisting observation: %w", err)
	}

	s.logger.Info().
		Str("location_key", string(snapshot.Key)).
		Float64("pm25", snapshot.Observation.PM25).
		Str("warning", snapshot.Warning).
		Msg("observation collected")

	return snapshot, nil
}

func (s *Service) merge(reading *station.Reading, wobs *weather.Observation) *Snapshot {
	snapshot := &Snapshot{Station: reading, Weather: wobs}

	obs := observation.Observation{
		PM25:             observation.DefaultPM25,
		Temperature:      observation.DefaultTemperature,
		WindSpeed:        observation.DefaultWindSpeed,
		RelativeHumidity: observation.DefaultRelativeHumidity,
	}

	var warnings []string

	switch {
	case reading == nil:
		warnings = append(warnings, "no nearby air quality station; weather data only")
	case reading.PM25 == nil:
		warnings = append(warnings, "nearest station reported no recent PM2.5 value")
	default:
		obs.PM25 = *reading.PM25
	}

	if wobs != nil {
		obs.Temperature = wobs.Temperature
		obs.WindSpeed = wobs.WindSpeed
		obs.RelativeHumidity = wobs.RelativeHumidity
	} else {
		warnings = append(warnings, "weather data unavailable")
	}

	snapshot.Warning = strings.Join(warnings, "; ")

	switch {
	case reading != nil && !reading.MeasuredAt.IsZero():
		obs.Timestamp = reading.MeasuredAt
	case wobs != nil && !wobs.ObservedAt.IsZero():
		obs.Timestamp = wobs.ObservedAt
	default:
		obs.Timestamp = s.now()
	}

	snapshot.Observation = obs
	return snapshot
}
