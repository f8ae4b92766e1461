// Package models defines the API request and response types.
package models

// PredictRequest is the body of POST /v1/predict. Every measurement field
// is optional; missing fields are resolved from persisted observations.
// Field names match the historical serving API (t2m is temperature in °C).
type PredictRequest struct {
	PM25             *float64 `json:"pm25,omitempty"`
	Temperature      *float64 `json:"t2m,omitempty"`
	WindSpeed        *float64 `json:"wind_speed,omitempty"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lon              *float64 `json:"lon,omitempty"`
}

// CoordinatesRequest is the body of POST /v1/predict/from-coordinates.
type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// AirQualityResponse is the body of GET /v1/air-quality.
type AirQualityResponse struct {
	StationName *string  `json:"station_name,omitempty"`
	DistanceKM  *float64 `json:"distance_km,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	PM25        *float64 `json:"pm25"`
	LastUpdated *string  `json:"last_updated,omitempty"`

	TemperatureCelsius *float64 `json:"temperature_celsius"`
	RelativeHumidity   *float64 `json:"relative_humidity"`
	WindSpeed          *float64 `json:"wind_speed"`
	WeatherTime        *string  `json:"weather_time,omitempty"`

	Warning string `json:"warning,omitempty"`
}
