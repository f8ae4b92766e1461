package forecast

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// RegistryConfig holds configuration for the model registry.
type RegistryConfig struct {
	Source ArtifactSource
	Logger zerolog.Logger
}

// Registry holds one trained model per supported horizon.
//
// Models are loaded lazily on first access, as a single batch behind a
// one-time guard so concurrent first callers block on one load. A failure
// for any horizon fails the whole registry permanently; there is no partial
// registry and no reload. Updating models requires a process restart.
type Registry struct {
	source ArtifactSource
	logger zerolog.Logger

	once    sync.Once
	models  map[int]Model
	loadErr error
}

// NewRegistry creates a registry over the given artifact source.
// No artifacts are read until the first Model call.
func NewRegistry(cfg RegistryConfig) *Registry {
	return &Registry{
		source: cfg.Source,
		logger: cfg.Logger,
	}
}

// Model returns the trained model for a horizon, loading all horizons'
// artifacts on first use. After the first call this is an in-memory lookup.
func (r *Registry) Model(horizon int) (Model, error) {
	r.once.Do(r.loadAll)
	if r.loadErr != nil {
		return nil, r.loadErr
	}

	m, ok := r.models[horizon]
	if !ok {
		return nil, fmt.Errorf("%w: +%dh", ErrUnknownHorizon, horizon)
	}
	return m, nil
}

// Horizons returns the supported horizons in serving order.
func (r *Registry) Horizons() []int {
	out := make([]int, len(Horizons))
	copy(out, Horizons)
	return out
}

// Ready reports whether all models are loaded and usable, triggering the
// load if it has not happened yet.
func (r *Registry) Ready() error {
	_, err := r.Model(Horizons[0])
	return err
}

func (r *Registry) loadAll() {
	models := make(map[int]Model, len(Horizons))
	for _, h := range Horizons {
		m, err := r.source.Load(h)
		if err != nil {
			r.loadErr = fmt.Errorf("loading model for +%dh horizon: %w", h, err)
			r.logger.Error().Err(err).Int("horizon", h).Msg("model load failed")
			return
		}
		models[h] = m
	}

	r.models = models
	r.logger.Info().Ints("horizons", Horizons).Msg("forecast models loaded")
}
