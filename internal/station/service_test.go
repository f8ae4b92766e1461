package station_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/station"
)

// mockProvider serves canned stations keyed by search radius.
type mockProvider struct {
	stationsByRadius map[int][]*station.Station
	measurements     map[int64][]*station.Measurement
	parameters       map[int64]string

	searchCalls []int
	paramCalls  int
}

func (m *mockProvider) SearchStations(_ context.Context, _, _ float64, radiusMeters int) ([]*station.Station, error) {
	m.searchCalls = append(m.searchCalls, radiusMeters)
	return m.stationsByRadius[radiusMeters], nil
}

func (m *mockProvider) LatestMeasurements(_ context.Context, stationID int64) ([]*station.Measurement, error) {
	return m.measurements[stationID], nil
}

func (m *mockProvider) SensorParameter(_ context.Context, sensorID int64) (string, error) {
	m.paramCalls++
	param, ok := m.parameters[sensorID]
	if !ok {
		return "", errors.New("unknown sensor")
	}
	return param, nil
}

func TestService_NearestReading(t *testing.T) {
	measuredAt := time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC)

	provider := &mockProvider{
		stationsByRadius: map[int][]*station.Station{
			5000: {
				{ID: 1, Name: "Vondelpark", Lat: 52.358, Lon: 4.868, HasPM25: true},
				{ID: 2, Name: "Westerpark", Lat: 52.387, Lon: 4.877, HasPM25: true},
				{ID: 3, Name: "No PM", Lat: 52.371, Lon: 4.896, HasPM25: false},
			},
		},
		measurements: map[int64][]*station.Measurement{
			2: {
				{SensorID: 20, Value: 18.5, MeasuredAt: measuredAt},
				{SensorID: 21, Value: 6.1, MeasuredAt: measuredAt.Add(-time.Hour)},
			},
		},
		parameters: map[int64]string{20: "pm25", 21: "no2"},
	}

	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	reading, err := svc.NearestReading(context.Background(), 52.390, 4.880)
	require.NoError(t, err)

	// Station 2 is the closest station that measures PM2.5.
	assert.Equal(t, int64(2), reading.StationID)
	assert.Equal(t, "Westerpark", reading.StationName)
	require.NotNil(t, reading.PM25)
	assert.Equal(t, 18.5, *reading.PM25)
	assert.Equal(t, measuredAt, reading.MeasuredAt, "newest measurement time wins")
	assert.Greater(t, reading.DistanceKM, 0.0)
	assert.Less(t, reading.DistanceKM, 1.0)
}

func TestService_ProgressiveRadiusSearch(t *testing.T) {
	provider := &mockProvider{
		stationsByRadius: map[int][]*station.Station{
			// Nothing within 1km or 5km; a hit shows up at 10km.
			10000: {{ID: 7, Name: "Far", Lat: 52.30, Lon: 4.95, HasPM25: true}},
		},
		measurements: map[int64][]*station.Measurement{
			7: {{SensorID: 70, Value: 9.0, MeasuredAt: time.Now().UTC()}},
		},
		parameters: map[int64]string{70: "pm25"},
	}

	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	reading, err := svc.NearestReading(context.Background(), 52.37, 4.90)
	require.NoError(t, err)

	assert.Equal(t, []int{1000, 5000, 10000}, provider.searchCalls, "search widens until a station is found")
	assert.Equal(t, int64(7), reading.StationID)
}

func TestService_NoStationsAnywhere(t *testing.T) {
	provider := &mockProvider{stationsByRadius: map[int][]*station.Station{}}
	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.NearestReading(context.Background(), 0, 0)
	assert.ErrorIs(t, err, station.ErrNoStations)
	assert.Equal(t, []int{1000, 5000, 10000, 25000}, provider.searchCalls)
}

func TestService_NoMeasurements(t *testing.T) {
	provider := &mockProvider{
		stationsByRadius: map[int][]*station.Station{
			1000: {{ID: 1, Name: "Empty", Lat: 52.37, Lon: 4.90, HasPM25: true}},
		},
		measurements: map[int64][]*station.Measurement{},
	}
	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.NearestReading(context.Background(), 52.37, 4.90)
	assert.ErrorIs(t, err, station.ErrNoMeasurements)
}

func TestService_NoPM25Sensor(t *testing.T) {
	provider := &mockProvider{
		stationsByRadius: map[int][]*station.Station{
			1000: {{ID: 1, Name: "Weather only", Lat: 52.37, Lon: 4.90, HasPM25: true}},
		},
		measurements: map[int64][]*station.Measurement{
			1: {{SensorID: 10, Value: 21.0, MeasuredAt: time.Now().UTC()}},
		},
		parameters: map[int64]string{10: "o3"},
	}
	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	reading, err := svc.NearestReading(context.Background(), 52.37, 4.90)
	require.NoError(t, err)

	// The reading exists but carries no PM2.5 value.
	assert.Nil(t, reading.PM25)
}

func TestService_SensorParameterCached(t *testing.T) {
	now := time.Now().UTC()
	provider := &mockProvider{
		stationsByRadius: map[int][]*station.Station{
			1000: {{ID: 1, Name: "Busy", Lat: 52.37, Lon: 4.90, HasPM25: true}},
		},
		measurements: map[int64][]*station.Measurement{
			1: {
				{SensorID: 10, Value: 18.0, MeasuredAt: now},
				{SensorID: 10, Value: 18.2, MeasuredAt: now.Add(time.Minute)},
				{SensorID: 10, Value: 18.4, MeasuredAt: now.Add(2 * time.Minute)},
			},
		},
		parameters: map[int64]string{10: "pm25"},
	}
	svc := station.NewService(station.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.NearestReading(context.Background(), 52.37, 4.90)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.paramCalls, "repeated sensors resolve the parameter once")
}
