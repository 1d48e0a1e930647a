package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/locationd/internal/adapter/google"
	httpadapter "github.com/couchcryptid/locationd/internal/adapter/http"
	"github.com/couchcryptid/locationd/internal/adapter/nominatim"
	"github.com/couchcryptid/locationd/internal/adapter/osrm"
	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/config"
	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
	"github.com/couchcryptid/locationd/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Google is the primary for every concern; without a key the engine
	// runs on the open fallbacks alone (feature-flagged via GOOGLE_ENABLED
	// / GOOGLE_API_KEY).
	var (
		geocoder    domain.GeocodingProvider
		suggester   domain.SuggestionProvider
		reversePrim domain.ReverseProvider
		routerPrim  domain.RoutingProvider
	)
	if cfg.GoogleEnabled {
		client := google.NewClient(cfg.GoogleAPIKey, cfg.ProviderTimeout, logger, metrics)
		geocoder = client
		suggester = client
		reversePrim = client
		routerPrim = client
		logger.Info("google providers enabled", "timeout", cfg.ProviderTimeout)
	} else {
		logger.Info("google providers disabled")
	}

	osrmClient := osrm.NewClient(cfg.OSRMBaseURL, cfg.ProviderTimeout, logger, metrics)
	nominatimClient := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.ProviderTimeout, logger, metrics)

	corrections := cache.NewStore[domain.Correction](cfg.CorrectionTTL, clock)
	geocodeResults := cache.NewStore[*domain.Coordinate](cfg.GeocodeCacheTTL, clock)
	reverseResults := cache.NewStore[string](cfg.ReverseCacheTTL, clock)
	distances := cache.NewStore[float64](0, clock)

	forward := resolver.NewForwardResolver(geocoder, suggester, corrections, geocodeResults, cfg.DefaultCountry, logger, metrics)
	reverse := resolver.NewReverseResolver(reversePrim, nominatimClient, reverseResults, cache.NewIntervalGate(cfg.ReverseMinInterval), logger, metrics)
	distance := resolver.NewDistanceResolver(routerPrim, osrmClient, distances, cfg.DistanceShortCircuitKm, cfg.ProviderTimeout, logger, metrics)

	engine := resolver.NewEngine(forward, reverse, distance)

	srv := httpadapter.NewServer(cfg.HTTPAddr, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
