// Package api provides the HTTP API for aircast.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/api/handler"
	"github.com/aircast/aircast/internal/api/middleware"
	"github.com/aircast/aircast/internal/forecast"
	"github.com/aircast/aircast/internal/ingest"
	"github.com/aircast/aircast/internal/prediction"
	"github.com/aircast/aircast/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	PredictionService *prediction.Service
	IngestService     *ingest.Service
	Registry          *forecast.Registry
	Providers         []*resilience.Client
	AuthSigningKey    []byte
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aircast-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.ContentTypeJSON)      // JSON content type
	r.Use(middleware.RequireJSON)          // Reject non-JSON request bodies

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Providers)
	predictHandler := handler.NewPredictHandler(cfg.PredictionService, cfg.IngestService)
	airQualityHandler := handler.NewAirQualityHandler(cfg.IngestService)

	authMiddleware := middleware.Auth(cfg.AuthSigningKey)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires an operator token
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Prediction endpoints - standard rate limiting; from-coordinates
		// fans out to upstream providers, so it gets the stricter limit
		r.With(standardRateLimit).Post("/predict", predictHandler.Predict)
		r.With(expensiveRateLimit).Post("/predict/from-coordinates", predictHandler.PredictFromCoordinates)

		// Live air quality lookup - fans out to upstream providers
		r.With(expensiveRateLimit).Get("/air-quality", airQualityHandler.Current)
	})

	return r
}
