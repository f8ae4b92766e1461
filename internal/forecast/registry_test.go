package forecast_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aircast/aircast/internal/forecast"
)

// stubModel returns a fixed prediction.
type stubModel struct {
	prediction float64
	err        error
}

func (m *stubModel) Predict(forecast.FeatureVector) (float64, error) {
	return m.prediction, m.err
}

// stubSource serves canned models and counts Load calls.
type stubSource struct {
	loads  atomic.Int32
	models map[int]forecast.Model
	errs   map[int]error
}

func (s *stubSource) Load(horizon int) (forecast.Model, error) {
	s.loads.Add(1)
	if err, ok := s.errs[horizon]; ok {
		return nil, err
	}
	return s.models[horizon], nil
}

func newStubSource() *stubSource {
	models := make(map[int]forecast.Model)
	for _, h := range forecast.Horizons {
		models[h] = &stubModel{prediction: float64(h)}
	}
	return &stubSource{models: models}
}

func TestRegistry_LoadsAllHorizonsOnce(t *testing.T) {
	source := newStubSource()
	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: source, Logger: zerolog.Nop()})

	// Nothing is read before first use.
	assert.Equal(t, int32(0), source.loads.Load())

	for _, h := range forecast.Horizons {
		m, err := registry.Model(h)
		require.NoError(t, err)
		require.NotNil(t, m)
	}

	// One load per horizon, regardless of how many lookups happened.
	assert.Equal(t, int32(len(forecast.Horizons)), source.loads.Load())

	_, err := registry.Model(6)
	require.NoError(t, err)
	assert.Equal(t, int32(len(forecast.Horizons)), source.loads.Load())
}

func TestRegistry_ConcurrentFirstUse(t *testing.T) {
	source := newStubSource()
	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: source, Logger: zerolog.Nop()})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Model(1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(len(forecast.Horizons)), source.loads.Load())
}

func TestRegistry_PartialLoadFailsEverything(t *testing.T) {
	source := newStubSource()
	source.errs = map[int]error{12: errors.New("artifact corrupted")}

	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: source, Logger: zerolog.Nop()})

	// Even horizons whose artifacts are fine must fail.
	_, err := registry.Model(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "+12h")

	_, err = registry.Model(24)
	require.Error(t, err)

	assert.Error(t, registry.Ready())
}

func TestRegistry_UnknownHorizon(t *testing.T) {
	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: newStubSource(), Logger: zerolog.Nop()})

	_, err := registry.Model(3)
	assert.ErrorIs(t, err, forecast.ErrUnknownHorizon)
}

func TestRegistry_Horizons(t *testing.T) {
	registry := forecast.NewRegistry(forecast.RegistryConfig{Source: newStubSource(), Logger: zerolog.Nop()})

	horizons := registry.Horizons()
	assert.Equal(t, []int{1, 6, 12, 24}, horizons)

	// Mutating the returned slice must not affect the registry.
	horizons[0] = 99
	assert.Equal(t, []int{1, 6, 12, 24}, registry.Horizons())
}
