package forecast_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/forecast"
	"github.com/aircast/aircast/internal/observation"
)

func TestBuildFeatures(t *testing.T) {
	// 2024-01-15 is a Monday, so day-of-week encodes as 0.
	obs := observation.Observation{
		Timestamp:        time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		PM25:             18.5,
		Temperature:      6.2,
		WindSpeed:        4.1,
		RelativeHumidity: 81,
	}

	v, err := forecast.BuildFeatures(obs)
	require.NoError(t, err)

	assert.Equal(t, 18.5, v.PM25)
	assert.Equal(t, 6.2, v.Temperature)
	assert.Equal(t, 4.1, v.WindSpeed)
	assert.Equal(t, 81.0, v.RelativeHumidity)

	assert.InDelta(t, math.Sin(2*math.Pi*14/24), v.HourSin, 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*14/24), v.HourCos, 1e-12)
	assert.InDelta(t, 0, v.DowSin, 1e-12)
	assert.InDelta(t, 1, v.DowCos, 1e-12)
}

func TestBuildFeatures_SundayIsSix(t *testing.T) {
	obs := observation.Observation{
		Timestamp: time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC), // Sunday
		PM25:      10, Temperature: 5, WindSpeed: 2, RelativeHumidity: 70,
	}

	v, err := forecast.BuildFeatures(obs)
	require.NoError(t, err)

	assert.InDelta(t, math.Sin(2*math.Pi*6/7), v.DowSin, 1e-12)
	assert.InDelta(t, math.Cos(2*math.Pi*6/7), v.DowCos, 1e-12)
}

func TestBuildFeatures_HourWrapAroundIsContinuous(t *testing.T) {
	base := observation.Observation{PM25: 10, Temperature: 5, WindSpeed: 2, RelativeHumidity: 70}

	late := base
	late.Timestamp = time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	early := base
	early.Timestamp = time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)

	vLate, err := forecast.BuildFeatures(late)
	require.NoError(t, err)
	vEarly, err := forecast.BuildFeatures(early)
	require.NoError(t, err)

	// Hour 23 and hour 0 must be close in the encoded space.
	distance := math.Hypot(vLate.HourSin-vEarly.HourSin, vLate.HourCos-vEarly.HourCos)
	assert.Less(t, distance, 0.3)
}

func TestBuildFeatures_IsPure(t *testing.T) {
	obs := observation.Observation{
		Timestamp: time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		PM25:      18.5, Temperature: 6.2, WindSpeed: 4.1, RelativeHumidity: 81,
	}

	first, err := forecast.BuildFeatures(obs)
	require.NoError(t, err)
	second, err := forecast.BuildFeatures(obs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildFeatures_RejectsInvalidInput(t *testing.T) {
	valid := observation.Observation{
		Timestamp: time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC),
		PM25:      18.5, Temperature: 6.2, WindSpeed: 4.1, RelativeHumidity: 81,
	}

	tests := []struct {
		name   string
		mutate func(*observation.Observation)
	}{
		{name: "zero timestamp", mutate: func(o *observation.Observation) { o.Timestamp = time.Time{} }},
		{name: "NaN pm25", mutate: func(o *observation.Observation) { o.PM25 = math.NaN() }},
		{name: "Inf temperature", mutate: func(o *observation.Observation) { o.Temperature = math.Inf(1) }},
		{name: "NaN humidity", mutate: func(o *observation.Observation) { o.RelativeHumidity = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := valid
			tt.mutate(&obs)
			_, err := forecast.BuildFeatures(obs)
			assert.ErrorIs(t, err, forecast.ErrInvalidInput)
		})
	}
}

func TestFeatureVector_ValuesOrder(t *testing.T) {
	v := forecast.FeatureVector{
		PM25: 1, Temperature: 2, WindSpeed: 3, RelativeHumidity: 4,
		HourSin: 5, HourCos: 6, DowSin: 7, DowCos: 8,
	}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, v.Values())
}

func TestHorizonLabel(t *testing.T) {
	assert.Equal(t, "+1h", forecast.HorizonLabel(1))
	assert.Equal(t, "+24h", forecast.HorizonLabel(24))
}
