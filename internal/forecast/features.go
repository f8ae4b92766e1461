package forecast

import (
	"fmt"
	"math"

	"github.com/aircast/aircast/internal/observation"
)

// BuildFeatures converts an observation into the model feature vector.
// It is a pure function of the observation's five fields.
//
// Hour of day and day of week (Monday=0) are encoded cyclically so that
// adjacent values at the wrap-around (hour 23 and hour 0) stay close in
// feature space.
func BuildFeatures(obs observation.Observation) (FeatureVector, error) {
	if obs.Timestamp.IsZero() {
		return FeatureVector{}, fmt.Errorf("%w: missing timestamp", ErrInvalidInput)
	}

	fields := map[string]float64{
		"pm25":              obs.PM25,
		"temperature":       obs.Temperature,
		"wind_speed":        obs.WindSpeed,
		"relative_humidity": obs.RelativeHumidity,
	}
	for name, value := range fields {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return FeatureVector{}, fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, name)
		}
	}

	hour := float64(obs.Timestamp.Hour())
	dow := float64((int(obs.Timestamp.Weekday()) + 6) % 7) // Monday=0

	return FeatureVector{
		PM25:             obs.PM25,
		Temperature:      obs.Temperature,
		WindSpeed:        obs.WindSpeed,
		RelativeHumidity: obs.RelativeHumidity,
		HourSin:          math.Sin(2 * math.Pi * hour / 24),
		HourCos:          math.Cos(2 * math.Pi * hour / 24),
		DowSin:           math.Sin(2 * math.Pi * dow / 7),
		DowCos:           math.Cos(2 * math.Pi * dow / 7),
	}, nil
}
