package forecast_test

import (
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/forecast"
)

func newEngine(source forecast.ArtifactSource) *forecast.Engine {
	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: source, Logger: zerolog.Nop()})
	return forecast.NewEngine(registry)
}

func TestEngine_ForecastAllHorizons(t *testing.T) {
	dir := t.TempDir()
	writeIdentityArtifacts(t, dir)

	engine := newEngine(forecast.NewFileArtifactSource(dir))

	predictions, err := engine.Forecast(forecast.FeatureVector{PM25: 18.5})
	require.NoError(t, err)

	require.Len(t, predictions, 4)
	assert.Equal(t, 19.5, predictions["+1h"])
	assert.Equal(t, 24.5, predictions["+6h"])
	assert.Equal(t, 30.5, predictions["+12h"])
	assert.Equal(t, 42.5, predictions["+24h"])
}

func TestEngine_RoundsToTwoDecimals(t *testing.T) {
	dir := t.TempDir()
	for _, h := range forecast.Horizons {
		writeArtifact(t, dir, h, []float64{1, 0, 0, 0, 0, 0, 0, 0}, 0.005)
	}

	engine := newEngine(forecast.NewFileArtifactSource(dir))

	predictions, err := engine.Forecast(forecast.FeatureVector{PM25: 10.111})
	require.NoError(t, err)

	for label, p := range predictions {
		assert.Equal(t, 10.12, p, "label %s", label)
		assert.Equal(t, math.Round(p*100)/100, p, "label %s must be rounded", label)
	}
}

func TestEngine_ModelFailureAbortsAll(t *testing.T) {
	source := newStubSource()
	source.models[12] = &stubModel{err: errors.New("boom")}

	engine := newEngine(source)

	_, err := engine.Forecast(forecast.FeatureVector{})
	require.Error(t, err)

	var infErr *forecast.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, 12, infErr.Horizon)
}

func TestEngine_NonFinitePredictionIsAnError(t *testing.T) {
	source := newStubSource()
	source.models[6] = &stubModel{prediction: math.NaN()}

	engine := newEngine(source)

	_, err := engine.Forecast(forecast.FeatureVector{})
	var infErr *forecast.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, 6, infErr.Horizon)
}

func TestEngine_MissingArtifactFailsForecast(t *testing.T) {
	engine := newEngine(forecast.NewFileArtifactSource(t.TempDir()))

	_, err := engine.Forecast(forecast.FeatureVector{PM25: 10})
	assert.ErrorIs(t, err, forecast.ErrArtifactMissing)
}
