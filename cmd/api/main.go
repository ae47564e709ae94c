// Package main provides the entrypoint for the SafeMap API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/api"
	"github.com/safemap/safemap/internal/api/handler"
	"github.com/safemap/safemap/internal/api/middleware"
	"github.com/safemap/safemap/internal/display"
	"github.com/safemap/safemap/internal/geocode"
	"github.com/safemap/safemap/internal/geocode/nominatim"
	"github.com/safemap/safemap/internal/incident"
	"github.com/safemap/safemap/internal/incident/crimefeed"
	"github.com/safemap/safemap/internal/planner"
	"github.com/safemap/safemap/internal/provider/resilience"
	"github.com/safemap/safemap/internal/routing"
	"github.com/safemap/safemap/internal/routing/saferoute"
	"github.com/safemap/safemap/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "safemap-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SafeMap API")

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

	routingURL := os.Getenv("SAFEMAP_ROUTING_URL")
	if routingURL == "" {
		routingURL = "http://localhost:5000"
	}

	incidentsURL := os.Getenv("SAFEMAP_INCIDENTS_URL")
	if incidentsURL == "" {
		incidentsURL = "http://localhost:5001"
	}

	geocoderURL := os.Getenv("SAFEMAP_GEOCODER_URL") // empty means public Nominatim

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

	// Provider registry tracks circuit state for all upstream clients
	registry := resilience.NewRegistry()

	// Geocoding: Nominatim behind the resolver's raw-coordinate fast path
	geocoder := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:  geocoderURL,
		Registry: registry,
		Logger:   log,
	})
	resolver := geocode.NewResolver(geocode.ResolverConfig{
		Provider: geocoder,
		Logger:   log,
	})
	log.Info().Str("provider", geocoder.Name()).Msg("geocoder initialized")

	// Routing: risk-aware multi-route provider with response caching
	routeClient := saferoute.NewClient(saferoute.ClientConfig{
		BaseURL:  routingURL,
		Registry: registry,
		Logger:   log,
	})
	routeService := routing.NewService(routing.ServiceConfig{
		Provider: routeClient,
		Logger:   log,
	})
	log.Info().Str("url", routingURL).Msg("routing service initialized")

	// Incidents: crime feed with styling applied at cache time
	incidentClient := crimefeed.NewClient(crimefeed.ClientConfig{
		BaseURL:  incidentsURL,
		Registry: registry,
		Logger:   log,
	})
	incidentService := incident.NewService(incident.ServiceConfig{
		Provider: incidentClient,
		Logger:   log,
	})
	log.Info().Str("url", incidentsURL).Msg("incident service initialized")

	// Shared display state backed by the in-memory canvas
	displayState := display.NewState(display.NewMemoryCanvas(), log)

	// Planner drives the resolve, route, score, render flow
	flow := planner.New(planner.Config{
		Resolver:  resolver,
		Routes:    routeService,
		Incidents: incidentService,
		Display:   displayState,
		Logger:    log,
	})
	log.Info().Msg("planner initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Resolver:    resolver,
		Planner:     flow,
		Incidents:   incidentService,
		Overlay:     flow,
		Ops: handler.OpsConfig{
			Version:            Version,
			BuildTime:          BuildTime,
			RouteCacheStats:    routeService.CacheStats,
			IncidentCacheStats: incidentService.CacheStats,
			Registry:           registry,
		},
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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
