// Package config loads service settings from environment variables,
// applying defaults where unset and validating the rest.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Google Maps configuration. The key enables the primary geocoding,
	// autocomplete, reverse, and routing providers; without it the engine
	// runs on the open fallbacks alone.
	GoogleAPIKey  string
	GoogleEnabled bool

	OSRMBaseURL        string
	NominatimBaseURL   string
	NominatimUserAgent string
	ProviderTimeout    time.Duration

	// Engine tuning.
	ReverseMinInterval     time.Duration
	ReverseCacheTTL        time.Duration
	GeocodeCacheTTL        time.Duration
	CorrectionTTL          time.Duration
	DistanceShortCircuitKm float64
	DefaultCountry         string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	providerTimeout, err := parseDuration("PROVIDER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	reverseMinInterval, err := parseDuration("REVERSE_MIN_INTERVAL", "10s")
	if err != nil {
		return nil, err
	}
	reverseCacheTTL, err := parseDuration("REVERSE_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	geocodeCacheTTL, err := parseDuration("GEOCODE_CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	correctionTTL, err := parseDuration("CORRECTION_TTL", "24h")
	if err != nil {
		return nil, err
	}
	shortCircuitKm, err := parseFloat("DISTANCE_SHORT_CIRCUIT_KM", 2000)
	if err != nil {
		return nil, err
	}

	googleKey := os.Getenv("GOOGLE_API_KEY")
	googleEnabled := googleKey != ""
	if v := os.Getenv("GOOGLE_ENABLED"); v != "" {
		googleEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GoogleAPIKey:  googleKey,
		GoogleEnabled: googleEnabled,

		OSRMBaseURL:        os.Getenv("OSRM_BASE_URL"),
		NominatimBaseURL:   os.Getenv("NOMINATIM_BASE_URL"),
		NominatimUserAgent: envOrDefault("NOMINATIM_USER_AGENT", "locationd/1.0"),
		ProviderTimeout:    providerTimeout,

		ReverseMinInterval:     reverseMinInterval,
		ReverseCacheTTL:        reverseCacheTTL,
		GeocodeCacheTTL:        geocodeCacheTTL,
		CorrectionTTL:          correctionTTL,
		DistanceShortCircuitKm: shortCircuitKm,
		DefaultCountry:         envOrDefault("DEFAULT_COUNTRY", "IN"),
	}

	if cfg.GoogleEnabled && cfg.GoogleAPIKey == "" {
		return nil, errors.New("GOOGLE_ENABLED is true but GOOGLE_API_KEY is not set")
	}
	if cfg.ReverseMinInterval < 0 {
		return nil, errors.New("REVERSE_MIN_INTERVAL must not be negative")
	}
	if cfg.DistanceShortCircuitKm <= 0 {
		return nil, errors.New("DISTANCE_SHORT_CIRCUIT_KM must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v := envOrDefault(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}
