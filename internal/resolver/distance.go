package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

// DistanceResolver computes straight-line and travel distances. Travel
// distances walk a provider chain with per-call timeouts and a
// provider-tagged cache; when every provider fails the straight-line
// figure stands in, cached so repeated failures stop re-dialing.
type DistanceResolver struct {
	providers      []domain.RoutingProvider // priority order
	cache          *cache.Store[float64]
	shortCircuitKm float64
	timeout        time.Duration

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDistanceResolver creates a DistanceResolver over the given providers
// in fallback order; nil providers are skipped.
func NewDistanceResolver(
	primary, secondary domain.RoutingProvider,
	store *cache.Store[float64],
	shortCircuitKm float64,
	timeout time.Duration,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *DistanceResolver {
	var providers []domain.RoutingProvider
	for _, p := range []domain.RoutingProvider{primary, secondary} {
		if p != nil {
			providers = append(providers, p)
		}
	}
	return &DistanceResolver{
		providers:      providers,
		cache:          store,
		shortCircuitKm: shortCircuitKm,
		timeout:        timeout,
		logger:         logger,
		metrics:        metrics,
	}
}

// StraightLineKm returns the haversine great-circle distance in
// kilometers, or false when either coordinate is out of bounds.
func (r *DistanceResolver) StraightLineKm(a, b domain.Coordinate) (float64, bool) {
	if !a.Valid() || !b.Valid() {
		return 0, false
	}
	return domain.HaversineKm(a, b), true
}

// TravelKm returns the real travel distance in kilometers between a and b,
// or false when either coordinate is out of bounds. Separations beyond the
// short-circuit threshold return the straight-line figure directly —
// routing providers are unreliable and slow at that range, a deliberate
// accuracy/latency tradeoff.
func (r *DistanceResolver) TravelKm(ctx context.Context, a, b domain.Coordinate) (float64, bool) {
	straight, ok := r.StraightLineKm(a, b)
	if !ok {
		return 0, false
	}
	if straight > r.shortCircuitKm {
		r.metrics.ResolveRequests.WithLabelValues("travel_distance", "resolved").Inc()
		return straight, true
	}

	// Cache before network, across every provider namespace in chain
	// order, so a value computed by a fallback provider keeps serving
	// even while the primary stays broken.
	for _, p := range r.providers {
		if km, ok := r.cache.Get(distanceKey(p.Tag(), a, b)); ok {
			r.metrics.CacheLookups.WithLabelValues("distance", "hit").Inc()
			r.metrics.ResolveRequests.WithLabelValues("travel_distance", "resolved").Inc()
			return km, true
		}
	}
	r.metrics.CacheLookups.WithLabelValues("distance", "miss").Inc()

	// The outcome is cached — with no TTL — so the provider chain must
	// not inherit the caller's cancellation; the per-call timeout still
	// bounds each dial.
	ctx = context.WithoutCancel(ctx)

	for _, p := range r.providers {
		if km, ok := r.route(ctx, p, a, b); ok {
			r.cache.Set(distanceKey(p.Tag(), a, b), km)
			r.metrics.ResolveRequests.WithLabelValues("travel_distance", "resolved").Inc()
			return km, true
		}
	}

	// Chain exhausted: remember the straight-line figure under the last
	// provider's namespace so repeated failures stop re-dialing.
	r.cache.Set(distanceKey(r.fallbackTag(), a, b), straight)
	r.logger.Warn("travel distance fell back to straight line",
		"origin", a.Key(), "dest", b.Key(), "km", straight)
	r.metrics.ResolveRequests.WithLabelValues("travel_distance", "fallback").Inc()
	return straight, true
}

// route queries a single provider under the per-call timeout. Any hard
// failure — timeout, rate limit, malformed response — reads as a miss and
// moves the chain along; rate limits are never retried.
func (r *DistanceResolver) route(ctx context.Context, p domain.RoutingProvider, a, b domain.Coordinate) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := p.Route(ctx, a, b)
	if err != nil {
		r.logger.Warn("routing provider failed", "provider", p.Tag(), "error", err)
		return 0, false
	}
	if res.Status != domain.StatusOK || res.DistanceMeters < 0 {
		return 0, false
	}
	return res.DistanceMeters / 1000, true
}

func (r *DistanceResolver) fallbackTag() string {
	if len(r.providers) == 0 {
		return "haversine"
	}
	return r.providers[len(r.providers)-1].Tag()
}

func distanceKey(tag string, a, b domain.Coordinate) string {
	a, b = a.Round4(), b.Round4()
	return fmt.Sprintf("%s:%s->%s", tag, a.Key(), b.Key())
}
