// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Config holds the API server configuration.
type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required"`
	LogLevel    zerolog.Level

	TelemetryEnabled bool
	OTLPEndpoint     string  `validate:"required"`
	TraceSampleRatio float64 `validate:"gte=0,lte=1"`

	NASAPowerBaseURL      string `validate:"required,url"`
	OpenMeteoArchiveURL   string `validate:"required,url"`
	OpenMeteoGeocodingURL string `validate:"required,url"`

	ProviderTimeout    time.Duration `validate:"gt=0"`
	ProviderMaxRetries uint64        `validate:"lte=10"`

	RangeConcurrency int `validate:"gte=1,lte=64"`
	MaxRangeDays     int `validate:"gte=1,lte=366"`

	RequireTLS bool
}

// FromEnv creates a Config from environment variables. Unparseable values
// fall back to their defaults; out-of-range values are reported by Validate.
func FromEnv() Config {
	level, err := zerolog.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		timeout = 10 * time.Second
	}

	retries, err := strconv.ParseUint(getEnvOrDefault("PROVIDER_MAX_RETRIES", "2"), 10, 64)
	if err != nil {
		retries = 2
	}

	sampleRatio, err := strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		sampleRatio = 1
	}

	concurrency, err := strconv.Atoi(getEnvOrDefault("RANGE_CONCURRENCY", "4"))
	if err != nil {
		concurrency = 4
	}

	maxRangeDays, err := strconv.Atoi(getEnvOrDefault("MAX_RANGE_DAYS", "31"))
	if err != nil {
		maxRangeDays = 31
	}

	return Config{
		Port:                  getEnvOrDefault("APP_PORT", "8080"),
		Environment:           getEnvOrDefault("APP_ENV", "development"),
		LogLevel:              level,
		TelemetryEnabled:      os.Getenv("OTEL_ENABLED") == "true",
		OTLPEndpoint:          getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TraceSampleRatio:      sampleRatio,
		NASAPowerBaseURL:      getEnvOrDefault("NASA_POWER_BASE_URL", "https://power.larc.nasa.gov/api"),
		OpenMeteoArchiveURL:   getEnvOrDefault("OPEN_METEO_ARCHIVE_URL", "https://archive-api.open-meteo.com"),
		OpenMeteoGeocodingURL: getEnvOrDefault("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com"),
		ProviderTimeout:       timeout,
		ProviderMaxRetries:    retries,
		RangeConcurrency:      concurrency,
		MaxRangeDays:          maxRangeDays,
		RequireTLS:            os.Getenv("REQUIRE_TLS") == "true",
	}
}

// Validate checks the configuration for values the server cannot start with.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs in the production environment.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
