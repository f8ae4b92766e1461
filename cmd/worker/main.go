// Package main provides the entrypoint for the aircast ingestion worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aircast/aircast/internal/database"
	"github.com/aircast/aircast/internal/ingest"
	"github.com/aircast/aircast/internal/observation"
	"github.com/aircast/aircast/internal/provider/resilience"
	"github.com/aircast/aircast/internal/station"
	"github.com/aircast/aircast/internal/station/openaq"
	"github.com/aircast/aircast/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aircast-worker"

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting aircast worker")

	// Worker also exposes a health endpoint for container platforms
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8081"
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	// Upstream provider clients
	stationService := station.NewService(station.ServiceConfig{
		Provider: openaq.NewClient(openaq.ClientConfig{
			APIKey:     os.Getenv("OPENAQ_API_KEY"),
			HTTPClient: resilience.NewClient(resilience.DefaultConfig(openaq.ProviderName)),
			Logger:     log,
		}),
		Logger: log,
	})

	weatherClient := openmeteo.NewClient(openmeteo.ClientConfig{
		HTTPClient: resilience.NewClient(resilience.DefaultConfig(openmeteo.ProviderName)),
		Logger:     log,
	})

	ingestService := ingest.NewService(ingest.ServiceConfig{
		Stations:   stationService,
		Weather:    weatherClient,
		Repository: repo,
		Logger:     log,
	})

	interval := 30 * time.Minute
	if raw := os.Getenv("COLLECT_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal().Err(err).Str("value", raw).Msg("invalid COLLECT_INTERVAL")
		}
		interval = parsed
	}

	job := ingest.NewRefreshJob(ingest.RefreshConfig{}, ingestService, log)

	scheduler := ingest.NewScheduler(job, interval, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start collection scheduler")
	}
	defer scheduler.Stop()

	// Optional Pub/Sub consumer for on-demand collection requests
	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if projectID != "" && subscription != "" {
		handler, err := ingest.NewPubSubHandler(ctx, ingest.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			Service:          ingestService,
			Job:              job,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close() //nolint:errcheck // best effort cleanup

		go func() {
			log.Info().
				Str("project", projectID).
				Str("subscription", subscription).
				Msg("pubsub consumer started")
			if err := handler.Start(ctx); err != nil {
				log.Error().Err(err).Msg("pubsub consumer stopped")
			}
		}()
	} else {
		log.Info().Msg("pubsub not configured, running scheduled collection only")
	}

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
