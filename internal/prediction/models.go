// Package prediction orchestrates observation resolution, feature
// construction, and multi-horizon forecasting into a single serving call.
package prediction

// Status indicates whether a prediction call succeeded.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// InputEcho is the resolved observation echoed back to the caller.
type InputEcho struct {
	PM25             float64 `json:"pm25"`
	Temperature      float64 `json:"t2m"`
	WindSpeed        float64 `json:"wind_speed"`
	RelativeHumidity float64 `json:"relative_humidity"`
	Timestamp        string  `json:"timestamp"`
}

// Result is the outcome of a prediction call. Status discriminates the two
// shapes: success carries Predictions and Input, error carries Message.
type Result struct {
	Status      Status             `json:"status"`
	Predictions map[string]float64 `json:"predictions,omitempty"`
	Input       *InputEcho         `json:"input_data,omitempty"`
	Message     string             `json:"message,omitempty"`
}
