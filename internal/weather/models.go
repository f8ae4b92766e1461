// Package weather provides current weather observations for a coordinate.
package weather

import (
	"context"
	"time"
)

// Observation is one set of current weather measurements.
type Observation struct {
	Temperature      float64
	RelativeHumidity float64
	WindSpeed        float64
	ObservedAt       time.Time
	FetchedAt        time.Time
}

// Provider is a current-weather data source.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (*Observation, error)
}
