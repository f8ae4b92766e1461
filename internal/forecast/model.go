// Package forecast implements the PM2.5 forecasting pipeline: feature
// construction, per-horizon model loading, and multi-horizon inference.
package forecast

import (
	"errors"
	"fmt"
)

// Horizons is the fixed set of supported forecast horizons in hours,
// in serving order.
var Horizons = []int{1, 6, 12, 24}

// Forecasting errors.
var (
	ErrArtifactMissing = errors.New("model artifact missing or unreadable")
	ErrInvalidInput    = errors.New("invalid observation input")
	ErrUnknownHorizon  = errors.New("unsupported forecast horizon")

	errNonFinite = errors.New("model produced a non-finite prediction")
)

// featureNames is the feature schema every model artifact must match, in
// order. It is a contract with the training pipeline.
var featureNames = []string{
	"pm25",
	"temperature",
	"wind_speed",
	"relative_humidity",
	"hour_sin",
	"hour_cos",
	"dow_sin",
	"dow_cos",
}

// FeatureVector is the fixed-schema numeric encoding of an observation.
type FeatureVector struct {
	PM25             float64
	Temperature      float64
	WindSpeed        float64
	RelativeHumidity float64
	HourSin          float64
	HourCos          float64
	DowSin           float64
	DowCos           float64
}

// Values returns the vector's fields in schema order.
func (v FeatureVector) Values() []float64 {
	return []float64{
		v.PM25,
		v.Temperature,
		v.WindSpeed,
		v.RelativeHumidity,
		v.HourSin,
		v.HourCos,
		v.DowSin,
		v.DowCos,
	}
}

// Model is an opaque trained regressor bound to one forecast horizon.
// Implementations must be safe for concurrent read-only use.
type Model interface {
	// Predict runs inference on a single feature vector.
	Predict(v FeatureVector) (float64, error)
}

// ArtifactSource loads trained model artifacts, one per horizon.
type ArtifactSource interface {
	Load(horizon int) (Model, error)
}

// InferenceError reports a model failure during prediction.
type InferenceError struct {
	Horizon int
	Err     error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for +%dh horizon: %v", e.Horizon, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// HorizonLabel formats a horizon as its serving label, e.g. "+6h".
func HorizonLabel(horizon int) string {
	return fmt.Sprintf("+%dh", horizon)
}
