// Package station provides air quality monitoring station discovery and the
// latest PM2.5 reading near a coordinate.
package station

import (
	"context"
	"errors"
	"time"
)

// Discovery errors.
var (
	ErrNoStations     = errors.New("no monitoring station found within search radius")
	ErrNoMeasurements = errors.New("no recent measurements available")
)

// Station is an air quality monitoring station.
type Station struct {
	ID      int64
	Name    string
	Lat     float64
	Lon     float64
	HasPM25 bool
}

// Measurement is one sensor reading at a station.
type Measurement struct {
	SensorID   int64
	Value      float64
	MeasuredAt time.Time
}

// Reading is the latest PM2.5 observation from the station nearest to a
// queried coordinate. PM25 is nil when the station reported no recent
// PM2.5 value.
type Reading struct {
	StationID   int64
	StationName string
	Lat         float64
	Lon         float64
	DistanceKM  float64
	PM25        *float64
	MeasuredAt  time.Time
}

// Provider is a station data source.
type Provider interface {
	// SearchStations returns stations within radiusMeters of the coordinate.
	SearchStations(ctx context.Context, lat, lon float64, radiusMeters int) ([]*Station, error)

	// LatestMeasurements returns the most recent sensor readings for a station.
	LatestMeasurements(ctx context.Context, stationID int64) ([]*Measurement, error)

	// SensorParameter returns the measured parameter name for a sensor,
	// e.g. "pm25".
	SensorParameter(ctx context.Context, sensorID int64) (string, error)
}
