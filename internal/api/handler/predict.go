// Package handler provides HTTP handlers for the aircast API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aircast/aircast/internal/api/models"
	"github.com/aircast/aircast/internal/api/response"
	"github.com/aircast/aircast/internal/ingest"
	"github.com/aircast/aircast/internal/observation"
	"github.com/aircast/aircast/internal/prediction"
)

// PredictHandler handles prediction endpoints.
type PredictHandler struct {
	predictions *prediction.Service
	collector   *ingest.Service
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(predictions *prediction.Service, collector *ingest.Service) *PredictHandler {
	return &PredictHandler{
		predictions: predictions,
		collector:   collector,
	}
}

// predictResponse is a prediction result optionally annotated with a data
// acquisition warning.
type predictResponse struct {
	prediction.Result
	Warning string `json:"warning,omitempty"`
}

// Predict handles POST /v1/predict - forecast from caller-supplied fields,
// with missing fields resolved from persisted observations.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var input models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	partial := observation.Partial{
		PM25:             input.PM25,
		Temperature:      input.Temperature,
		WindSpeed:        input.WindSpeed,
		RelativeHumidity: input.RelativeHumidity,
	}

	var key *observation.Key
	if input.Lat != nil && input.Lon != nil {
		k := observation.KeyFor(*input.Lat, *input.Lon)
		key = &k
	}

	result := h.predictions.Predict(r.Context(), partial, key)
	response.JSON(w, r, http.StatusOK, result)
}

// PredictFromCoordinates handles POST /v1/predict/from-coordinates - acquire
// live station and weather data for a coordinate, then forecast from it.
func (h *PredictHandler) PredictFromCoordinates(w http.ResponseWriter, r *http.Request) {
	var input models.CoordinatesRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Lat == nil || input.Lon == nil {
		response.BadRequest(w, r, "lat and lon are required", []models.FieldError{
			{Field: "lat", Message: "required"},
			{Field: "lon", Message: "required"},
		})
		return
	}

	snapshot, err := h.collector.Collect(r.Context(), *input.Lat, *input.Lon)
	if err != nil {
		if errors.Is(err, ingest.ErrNoData) {
			response.NotFound(w, r, "no air quality or weather data available for these coordinates")
			return
		}
		response.InternalError(w, r, "collecting observations failed")
		return
	}

	// The snapshot was just appended under its key; resolving an empty
	// partial against that key picks it up with its measurement timestamp,
	// so the echo is stamped with the observation time rather than now.
	result := h.predictions.Predict(r.Context(), observation.Partial{}, &snapshot.Key)
	response.JSON(w, r, http.StatusOK, predictResponse{
		Result:  result,
		Warning: snapshot.Warning,
	})
}
