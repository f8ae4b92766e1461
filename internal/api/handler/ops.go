package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/aircast/aircast/internal/api/models"
	"github.com/aircast/aircast/internal/api/response"
	"github.com/aircast/aircast/internal/forecast"
	"github.com/aircast/aircast/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *forecast.Registry
	providers []*resilience.Client
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *forecast.Registry, providers []*resilience.Client) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// is ready once all forecast model artifacts have loaded.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Ready(); err != nil {
		response.ServiceUnavailable(w, r, "forecast models unavailable")
		return
	}

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - model and provider status.
// Requires an operator bearer token.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}

	modelStatus := models.SubsystemStatus{Name: "forecast-models", Status: models.HealthStatusOK}
	if err := h.registry.Ready(); err != nil {
		detail := err.Error()
		modelStatus.Status = models.HealthStatusFail
		modelStatus.Detail = &detail
		status.Status = models.HealthStatusDegraded
	}
	status.Subsystems = append(status.Subsystems, modelStatus)

	for _, client := range h.providers {
		state := client.BreakerState()
		provider := models.ProviderStatus{
			Provider:     client.Name(),
			Status:       models.HealthStatusOK,
			BreakerState: state.String(),
		}
		if state != gobreaker.StateClosed {
			provider.Status = models.HealthStatusDegraded
			status.Status = models.HealthStatusDegraded
		}
		status.Providers = append(status.Providers, provider)
	}

	response.JSON(w, r, http.StatusOK, status)
}
