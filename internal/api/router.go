// Package api provides the HTTP API for Weather Odds.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/api/handler"
	"github.com/weatherodds/weatherodds/internal/api/middleware"
	"github.com/weatherodds/weatherodds/internal/api/response"
	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/geocoding"
	"github.com/weatherodds/weatherodds/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics

	OddsService *climate.Service
	Geocoder    *geocoding.Service
	Registry    *resilience.Registry

	// Clock stamps export documents. Default: real clock.
	Clock clockwork.Clock

	// RequireTLS rejects requests forwarded over plain HTTP.
	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID) // Generate/propagate request ID first
	r.Use(middleware.Tracing()) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))         // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))       // Panic recovery
	r.Use(chimiddleware.RealIP)                  // Real IP extraction
	r.Use(middleware.SecurityHeaders)            // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS)) // TLS enforcement
	r.Use(middleware.ContentTypeJSON)            // JSON content type
	r.Use(middleware.RequireJSON)                // JSON request bodies

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route matches "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r, r.Method+" is not supported on "+r.URL.Path)
	})

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry)
	oddsHandler := handler.NewOddsHandler(cfg.OddsService)
	trendHandler := handler.NewTrendHandler(cfg.OddsService)
	locationHandler := handler.NewLocationHandler(cfg.Geocoder)
	exportHandler := handler.NewExportHandler(cfg.Clock)

	// Rate limits per endpoint category
	computeRateLimit := middleware.RateLimitByIP(middleware.ComputeRateLimit)   // 30 req/min
	lookupRateLimit := middleware.RateLimitByIP(middleware.LookupRateLimit)     // 120 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public, unlimited for probes)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		r.With(standardRateLimit).Get("/conditions", handler.ListConditions)
		r.With(lookupRateLimit).Get("/locations", locationHandler.SearchLocations)

		// Probability endpoints fan out to both climate providers
		r.Group(func(r chi.Router) {
			r.Use(computeRateLimit)
			r.Post("/odds", oddsHandler.ComputeOdds)
			r.Post("/odds:range", oddsHandler.ComputeRange)
			r.Get("/trends", trendHandler.GetTrend)
		})

		r.With(standardRateLimit).Post("/exports", exportHandler.CreateExport)
	})

	return r
}
