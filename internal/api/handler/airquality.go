package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/aircast/aircast/internal/api/models"
	"github.com/aircast/aircast/internal/api/response"
	"github.com/aircast/aircast/internal/ingest"
)

// AirQualityHandler handles the live air quality endpoint.
type AirQualityHandler struct {
	collector *ingest.Service
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(collector *ingest.Service) *AirQualityHandler {
	return &AirQualityHandler{collector: collector}
}

// Current handles GET /v1/air-quality - nearest station reading plus current
// weather for a coordinate. The merged observation is also appended to the
// persisted series for that location.
func (h *AirQualityHandler) Current(w http.ResponseWriter, r *http.Request) {
	lat, latErr := parseCoordinate(r, "lat")
	lon, lonErr := parseCoordinate(r, "lon")
	if latErr != nil || lonErr != nil {
		var fields []models.FieldError
		if latErr != nil {
			fields = append(fields, models.FieldError{Field: "lat", Message: latErr.Error()})
		}
		if lonErr != nil {
			fields = append(fields, models.FieldError{Field: "lon", Message: lonErr.Error()})
		}
		response.BadRequest(w, r, "invalid coordinates", fields)
		return
	}

	snapshot, err := h.collector.Collect(r.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, ingest.ErrNoData) {
			response.NotFound(w, r, "no air quality or weather data available for these coordinates")
			return
		}
		response.InternalError(w, r, "collecting observations failed")
		return
	}

	resp := models.AirQualityResponse{Warning: snapshot.Warning}

	if reading := snapshot.Station; reading != nil {
		distance := math.Round(reading.DistanceKM*100) / 100
		resp.StationName = &reading.StationName
		resp.DistanceKM = &distance
		resp.Latitude = &reading.Lat
		resp.Longitude = &reading.Lon
		resp.PM25 = reading.PM25
		if !reading.MeasuredAt.IsZero() {
			resp.LastUpdated = timestampPtr(reading.MeasuredAt)
		}
	}

	if wobs := snapshot.Weather; wobs != nil {
		resp.TemperatureCelsius = &wobs.Temperature
		resp.RelativeHumidity = &wobs.RelativeHumidity
		resp.WindSpeed = &wobs.WindSpeed
		if !wobs.ObservedAt.IsZero() {
			resp.WeatherTime = timestampPtr(wobs.ObservedAt)
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}

func parseCoordinate(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New("required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	return v, nil
}

func timestampPtr(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}
