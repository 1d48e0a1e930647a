// Package http exposes the resolution engine over HTTP alongside health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/locationd/internal/domain"
)

// Engine is the resolution surface the API exposes.
type Engine interface {
	Geocode(ctx context.Context, address, countryHint string) *domain.Coordinate
	ReverseGeocode(ctx context.Context, c domain.Coordinate) string
	StraightLineKm(a, b domain.Coordinate) (float64, bool)
	TravelKm(ctx context.Context, a, b domain.Coordinate) (float64, bool)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the engine plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	engine     Engine
	logger     *slog.Logger
}

// NewServer creates the API server.
func NewServer(addr string, engine Engine, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/geocode", s.handleGeocode)
	mux.HandleFunc("GET /v1/reverse-geocode", s.handleReverseGeocode)
	mux.HandleFunc("GET /v1/distance", s.handleDistance)
	mux.HandleFunc("GET /v1/travel-distance", s.handleTravelDistance)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	country := r.URL.Query().Get("country")

	coord := s.engine.Geocode(r.Context(), address, country)
	if coord == nil {
		// "Could not resolve" is an expected answer, not a server fault.
		writeJSON(w, http.StatusOK, map[string]any{"resolved": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"resolved": true,
		"lat":      coord.Lat,
		"lon":      coord.Lon,
	})
}

func (s *Server) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	coord, ok := parseCoordinate(r, "lat", "lon")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinate"})
		return
	}

	address := s.engine.ReverseGeocode(r.Context(), coord)
	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseCoordinatePair(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}

	km, ok := s.engine.StraightLineKm(from, to)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"km": km})
}

func (s *Server) handleTravelDistance(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseCoordinatePair(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}

	km, ok := s.engine.TravelKm(r.Context(), from, to)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"km": km})
}

func parseCoordinatePair(r *http.Request) (from, to domain.Coordinate, ok bool) {
	from, okFrom := parseCoordinate(r, "fromLat", "fromLon")
	to, okTo := parseCoordinate(r, "toLat", "toLon")
	return from, to, okFrom && okTo
}

func parseCoordinate(r *http.Request, latKey, lonKey string) (domain.Coordinate, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get(latKey), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get(lonKey), 64)
	if errLat != nil || errLon != nil {
		return domain.Coordinate{}, false
	}
	c := domain.Coordinate{Lat: lat, Lon: lon}
	return c, c.Valid()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
