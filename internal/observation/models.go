// Package observation provides the domain model for persisted air quality
// observations and the resolution of partial inputs against stored series.
package observation

import (
	"errors"
	"fmt"
	"time"
)

// Repository errors.
var (
	ErrLocationUnknown = errors.New("no observations recorded for location")
)

// Default measurement values used when no persisted data exists anywhere.
const (
	DefaultPM25             = 25.0
	DefaultTemperature      = 20.0
	DefaultWindSpeed        = 5.0
	DefaultRelativeHumidity = 60.0
)

// Key is the canonical identifier for a persisted observation series.
// It is derived from coordinates rounded to two decimal places so that
// the write path and the read path always address the same series.
type Key string

// KeyFor returns the canonical key for a coordinate pair.
func KeyFor(lat, lon float64) Key {
	return Key(fmt.Sprintf("%.2f_%.2f", lat, lon))
}

// Observation is one timestamped set of pollutant and weather measurements.
type Observation struct {
	Timestamp        time.Time
	PM25             float64
	Temperature      float64
	WindSpeed        float64
	RelativeHumidity float64
}

// Default returns the fixed fallback observation stamped at the given time.
func Default(now time.Time) Observation {
	return Observation{
		Timestamp:        now,
		PM25:             DefaultPM25,
		Temperature:      DefaultTemperature,
		WindSpeed:        DefaultWindSpeed,
		RelativeHumidity: DefaultRelativeHumidity,
	}
}

// Partial is a caller-supplied observation in which any measurement field
// may be absent. Missing fields are filled during resolution.
type Partial struct {
	PM25             *float64
	Temperature      *float64
	WindSpeed        *float64
	RelativeHumidity *float64
}

// Complete reports whether all four measurement fields are present.
func (p Partial) Complete() bool {
	return p.PM25 != nil && p.Temperature != nil && p.WindSpeed != nil && p.RelativeHumidity != nil
}

// Empty reports whether no measurement field is present.
func (p Partial) Empty() bool {
	return p.PM25 == nil && p.Temperature == nil && p.WindSpeed == nil && p.RelativeHumidity == nil
}

// fill returns an Observation with caller-supplied fields kept as-is and
// missing fields taken from src. The timestamp is always src's.
func (p Partial) fill(src Observation) Observation {
	obs := src
	if p.PM25 != nil {
		obs.PM25 = *p.PM25
	}
	if p.Temperature != nil {
		obs.Temperature = *p.Temperature
	}
	if p.WindSpeed != nil {
		obs.WindSpeed = *p.WindSpeed
	}
	if p.RelativeHumidity != nil {
		obs.RelativeHumidity = *p.RelativeHumidity
	}
	return obs
}
