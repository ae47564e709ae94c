// Package api provides the HTTP API for SafeMap.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/safemap/safemap/internal/api/handler"
	"github.com/safemap/safemap/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Resolver  handler.PointResolver
	Planner   handler.Submitter
	Incidents handler.IncidentSource
	Overlay   handler.OverlayController
	Ops       handler.OpsConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "safemap-api"
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
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	opsHandler := handler.NewOpsHandler(cfg.Ops)
	geocodeHandler := handler.NewGeocodeHandler(cfg.Resolver)
	routeHandler := handler.NewRouteHandler(cfg.Planner)
	incidentHandler := handler.NewIncidentHandler(cfg.Incidents, cfg.Overlay)

	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Geocoding - standard rate limiting
		r.With(standardRateLimit).Get("/geocode", geocodeHandler.Resolve)

		// Route comparison - expensive compute, strict rate limiting
		r.With(expensiveRateLimit).Post("/routes:compare", routeHandler.CompareRoutes)

		// Incidents - standard rate limiting
		r.Route("/incidents", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", incidentHandler.ListIncidents)
			r.Post("/overlay", incidentHandler.ToggleOverlay)
		})
	})

	return r
}
