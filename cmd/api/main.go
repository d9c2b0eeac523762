// Package main provides the entrypoint for the Weather Odds API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/weatherodds/weatherodds/internal/api"
	"github.com/weatherodds/weatherodds/internal/api/middleware"
	"github.com/weatherodds/weatherodds/internal/climate"
	"github.com/weatherodds/weatherodds/internal/climate/nasapower"
	climateopenmeteo "github.com/weatherodds/weatherodds/internal/climate/openmeteo"
	"github.com/weatherodds/weatherodds/internal/config"
	"github.com/weatherodds/weatherodds/internal/geocoding"
	geoopenmeteo "github.com/weatherodds/weatherodds/internal/geocoding/openmeteo"
	"github.com/weatherodds/weatherodds/internal/provider/resilience"
	"github.com/weatherodds/weatherodds/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "weatherodds-api"

	cfg := config.FromEnv()

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Environment).
		Msg("starting Weather Odds API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
		SampleRatio:    cfg.TraceSampleRatio,
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

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.TraceSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := resilience.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Upstream providers share one registry so /ops/status can report them.
	registry := resilience.NewRegistry()
	newProviderClient := func(name string) *resilience.Client {
		clientCfg := resilience.DefaultClientConfig(name)
		clientCfg.Timeout = cfg.ProviderTimeout
		clientCfg.MaxRetries = cfg.ProviderMaxRetries
		clientCfg.Registry = registry
		clientCfg.Metrics = providerMetrics
		clientCfg.Logger = log
		return resilience.NewClient(clientCfg)
	}

	climateNormals := nasapower.NewClient(nasapower.ClientConfig{
		BaseURL:    cfg.NASAPowerBaseURL,
		HTTPClient: newProviderClient(nasapower.ProviderName),
		Logger:     log,
	})

	recentArchive := climateopenmeteo.NewClient(climateopenmeteo.ClientConfig{
		BaseURL:    cfg.OpenMeteoArchiveURL,
		HTTPClient: newProviderClient(climateopenmeteo.ProviderName),
		Logger:     log,
	})

	geocoder := geoopenmeteo.NewClient(geoopenmeteo.ClientConfig{
		BaseURL:    cfg.OpenMeteoGeocodingURL,
		HTTPClient: newProviderClient(geoopenmeteo.ProviderName),
		Logger:     log,
	})

	log.Info().
		Int("providers", registry.ProviderCount()).
		Dur("timeout", cfg.ProviderTimeout).
		Uint64("max_retries", cfg.ProviderMaxRetries).
		Msg("upstream providers initialized")

	clock := clockwork.NewRealClock()

	oddsService := climate.NewService(climate.ServiceConfig{
		ClimateNormal:    climateNormals,
		RecentArchive:    recentArchive,
		Logger:           log,
		Clock:            clock,
		RangeConcurrency: cfg.RangeConcurrency,
		MaxRangeDays:     cfg.MaxRangeDays,
	})

	locationService := geocoding.NewService(geocoder, log)

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		Metrics:     httpMetrics,
		OddsService: oddsService,
		Geocoder:    locationService,
		Registry:    registry,
		Clock:       clock,
		RequireTLS:  cfg.RequireTLS,
	})

	// Range requests fan out to upstream calls, so the write timeout leaves
	// room for a full retry cycle on each provider.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
