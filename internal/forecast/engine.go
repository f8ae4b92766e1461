package forecast

import "math"

// Engine runs multi-horizon inference against the model registry.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Forecast produces one prediction per supported horizon, keyed by label
// ("+1h", ..., "+24h") and rounded to two decimal places.
//
// A model failure on any horizon aborts the whole call; there is no
// partial-success mode.
func (e *Engine) Forecast(v FeatureVector) (map[string]float64, error) {
	predictions := make(map[string]float64, len(Horizons))

	for _, h := range Horizons {
		m, err := e.registry.Model(h)
		if err != nil {
			return nil, err
		}

		p, err := m.Predict(v)
		if err != nil {
			return nil, &InferenceError{Horizon: h, Err: err}
		}
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, &InferenceError{Horizon: h, Err: errNonFinite}
		}

		predictions[HorizonLabel(h)] = math.Round(p*100) / 100
	}

	return predictions, nil
}
