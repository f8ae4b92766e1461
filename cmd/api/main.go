// Package main provides the entrypoint for the aircast API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/api"
	"github.com/aircast/aircast/internal/api/middleware"
	"github.com/aircast/aircast/internal/database"
	"github.com/aircast/aircast/internal/forecast"
	"github.com/aircast/aircast/internal/ingest"
	"github.com/aircast/aircast/internal/observation"
	"github.com/aircast/aircast/internal/prediction"
	"github.com/aircast/aircast/internal/provider/resilience"
	"github.com/aircast/aircast/internal/station"
	"github.com/aircast/aircast/internal/station/openaq"
	"github.com/aircast/aircast/internal/telemetry"
	"github.com/aircast/aircast/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aircast-api"

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting aircast API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	modelDir := os.Getenv("MODEL_DIR")
	if modelDir == "" {
		modelDir = "models"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Observation store: Postgres when DB_HOST is set, CSV files otherwise
	var repo observation.Repository
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err := database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		repo = observation.NewPostgresRepository(pool)
	} else {
		csvRepo, err := observation.NewCSVRepository(dataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", dataDir).Msg("failed to open observation store")
		}
		log.Info().Str("dir", dataDir).Msg("using CSV observation store")
		repo = csvRepo
	}

	// Forecast models
	registry := forecast.NewRegistry(forecast.RegistryConfig{
		Source: forecast.NewFileArtifactSource(modelDir),
		Logger: log,
	})
	engine := forecast.NewEngine(registry)

	// Upstream provider clients
	openaqHTTP := resilience.NewClient(resilience.DefaultConfig(openaq.ProviderName))
	openmeteoHTTP := resilience.NewClient(resilience.DefaultConfig(openmeteo.ProviderName))

	stationService := station.NewService(station.ServiceConfig{
		Provider: openaq.NewClient(openaq.ClientConfig{
			APIKey:     os.Getenv("OPENAQ_API_KEY"),
			HTTPClient: openaqHTTP,
			Logger:     log,
		}),
		Logger: log,
	})

	weatherClient := openmeteo.NewClient(openmeteo.ClientConfig{
		HTTPClient: openmeteoHTTP,
		Logger:     log,
	})

	// Domain services
	ingestService := ingest.NewService(ingest.ServiceConfig{
		Stations:   stationService,
		Weather:    weatherClient,
		Repository: repo,
		Logger:     log,
	})

	resolver := observation.NewResolver(observation.ResolverConfig{
		Repository: repo,
		Logger:     log,
	})

	predictionService := prediction.NewService(prediction.ServiceConfig{
		Resolver: resolver,
		Engine:   engine,
		Logger:   log,
	})

	// Operator token signing key
	signingKey := os.Getenv("AUTH_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default auth signing key - not secure for production")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		PredictionService: predictionService,
		IngestService:     ingestService,
		Registry:          registry,
		Providers:         []*resilience.Client{openaqHTTP, openmeteoHTTP},
		AuthSigningKey:    []byte(signingKey),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
