package ingest

import "time"

// Point is a geographic coordinate to collect observations for.
type Point struct {
	Lat float64
	Lon float64
}

// Target is a named group of collection points.
type Target struct {
	Name   string
	Points []Point
}

// RefreshConfig holds configuration for the periodic collection job.
type RefreshConfig struct {
	// Targets are the coordinates to collect. If empty, DefaultTargets
	// is used.
	Targets []Target

	// Concurrency is the number of concurrent collection workers.
	// Default: 3.
	Concurrency int

	// Timeout bounds each point's collection. Default: 30 seconds.
	Timeout time.Duration

	// Interval is how often the job runs. Default: 30 minutes.
	Interval time.Duration
}

// DefaultRefreshConfig returns the default collection configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:     DefaultTargets(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
		Interval:    30 * time.Minute,
	}
}

// DefaultTargets returns the default collection points: city centers with
// dense monitoring coverage.
func DefaultTargets() []Target {
	return []Target{
		{
			Name: "Amsterdam",
			Points: []Point{
				{Lat: 52.3676, Lon: 4.9041},
			},
		},
		{
			Name: "Berlin",
			Points: []Point{
				{Lat: 52.5200, Lon: 13.4050},
			},
		},
		{
			Name: "Paris",
			Points: []Point{
				{Lat: 48.8566, Lon: 2.3522},
			},
		},
		{
			Name: "Madrid",
			Points: []Point{
				{Lat: 40.4168, Lon: -3.7038},
			},
		},
		{
			Name: "Warsaw",
			Points: []Point{
				{Lat: 52.2297, Lon: 21.0122},
			},
		},
	}
}

// AllPoints returns every point from every target.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}
