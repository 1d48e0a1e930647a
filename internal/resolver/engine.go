package resolver

import (
	"context"
	"errors"

	"github.com/couchcryptid/locationd/internal/domain"
)

// Engine bundles the three resolvers behind the four operations exposed to
// callers. It returns plain data only; no provider detail leaks through.
type Engine struct {
	forward  *ForwardResolver
	reverse  *ReverseResolver
	distance *DistanceResolver
}

// NewEngine creates the engine facade over the three resolvers.
func NewEngine(forward *ForwardResolver, reverse *ReverseResolver, distance *DistanceResolver) *Engine {
	return &Engine{forward: forward, reverse: reverse, distance: distance}
}

// Geocode resolves a free-text place name to a coordinate, or nil when
// unresolvable.
func (e *Engine) Geocode(ctx context.Context, address, countryHint string) *domain.Coordinate {
	return e.forward.Geocode(ctx, address, countryHint)
}

// ReverseGeocode resolves a coordinate to a display-safe address string.
func (e *Engine) ReverseGeocode(ctx context.Context, c domain.Coordinate) string {
	return e.reverse.ReverseGeocode(ctx, c)
}

// StraightLineKm returns the great-circle distance between two coordinates.
func (e *Engine) StraightLineKm(a, b domain.Coordinate) (float64, bool) {
	return e.distance.StraightLineKm(a, b)
}

// TravelKm returns the travel distance between two coordinates.
func (e *Engine) TravelKm(ctx context.Context, a, b domain.Coordinate) (float64, bool) {
	return e.distance.TravelKm(ctx, a, b)
}

// CheckReadiness reports whether the engine can serve traffic.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.forward == nil || e.reverse == nil || e.distance == nil {
		return errors.New("engine is missing a resolver")
	}
	return nil
}
