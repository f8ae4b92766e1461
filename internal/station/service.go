package station

import (
	"context"
	"math"

	"github.com/rs/zerolog"
)

// defaultSearchRadii is the progressive search schedule in meters.
var defaultSearchRadii = []int{1000, 5000, 10000, 25000}

// ServiceConfig holds configuration for the station service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// SearchRadii overrides the progressive search schedule, in meters.
	SearchRadii []int
}

// Service finds the nearest PM2.5-capable station for a coordinate and
// retrieves its latest reading.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	radii    []int
}

// NewService creates a new station service.
func NewService(cfg ServiceConfig) *Service {
	radii := cfg.SearchRadii
	if len(radii) == 0 {
		radii = defaultSearchRadii
	}
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		radii:    radii,
	}
}

// NearestReading searches with progressively larger radii for the nearest
// PM2.5-capable station and returns its latest PM2.5 reading.
func (s *Service) NearestReading(ctx context.Context, lat, lon float64) (*Reading, error) {
	nearest, distance, err := s.findNearest(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	measurements, err := s.provider.LatestMeasurements(ctx, nearest.ID)
	if err != nil {
		return nil, err
	}
	if len(measurements) == 0 {
		return nil, ErrNoMeasurements
	}

	reading := &Reading{
		StationID:   nearest.ID,
		StationName: nearest.Name,
		Lat:         nearest.Lat,
		Lon:         nearest.Lon,
		DistanceKM:  distance,
	}

	// Sensor parameters are looked up per sensor; cache them so stations
	// with many sensors do not fan out into repeated provider calls.
	paramCache := make(map[int64]string)
	for _, m := range measurements {
		if !m.MeasuredAt.IsZero() && m.MeasuredAt.After(reading.MeasuredAt) {
			reading.MeasuredAt = m.MeasuredAt
		}

		param, ok := paramCache[m.SensorID]
		if !ok {
			param, err = s.provider.SensorParameter(ctx, m.SensorID)
			if err != nil {
				s.logger.Warn().Err(err).Int64("sensor_id", m.SensorID).Msg("sensor parameter lookup failed")
				continue
			}
			paramCache[m.SensorID] = param
		}

		if param == "pm25" {
			value := m.Value
			reading.PM25 = &value
		}
	}

	return reading, nil
}

// findNearest runs the progressive radius search and picks the closest
// PM2.5-capable station by great-circle distance.
func (s *Service) findNearest(ctx context.Context, lat, lon float64) (*Station, float64, error) {
	for _, radius := range s.radii {
		stations, err := s.provider.SearchStations(ctx, lat, lon, radius)
		if err != nil {
			return nil, 0, err
		}

		var nearest *Station
		minDistance := math.Inf(1)
		for _, st := range stations {
			if !st.HasPM25 {
				continue
			}
			d := haversineKM(lat, lon, st.Lat, st.Lon)
			if d < minDistance {
				minDistance = d
				nearest = st
			}
		}

		if nearest != nil {
			s.logger.Debug().
				Int("radius_m", radius).
				Int64("station_id", nearest.ID).
				Float64("distance_km", minDistance).
				Msg("nearest station found")
			return nearest, minDistance, nil
		}
	}

	return nil, 0, ErrNoStations
}

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance between two coordinates.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dlat := rad(lat2 - lat1)
	dlon := rad(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dlon/2)*math.Sin(dlon/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
