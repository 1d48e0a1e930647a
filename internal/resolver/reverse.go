package resolver

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

// ReverseResolver resolves coordinates to display-safe addresses. Lookups
// are cached by 4-decimal-rounded coordinate, coalesced in flight, and
// throttled by a module-wide minimum-interval gate that protects the
// primary provider's rate limit across all simultaneous callers.
type ReverseResolver struct {
	primary   domain.ReverseProvider
	secondary domain.ReverseProvider
	cache     *cache.Store[string]
	flight    cache.Group[string]
	gate      *cache.IntervalGate

	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReverseResolver creates a ReverseResolver. Either provider may be
// nil; with both nil every lookup degrades to the textual fallback.
func NewReverseResolver(
	primary, secondary domain.ReverseProvider,
	store *cache.Store[string],
	gate *cache.IntervalGate,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *ReverseResolver {
	return &ReverseResolver{
		primary:   primary,
		secondary: secondary,
		cache:     store,
		gate:      gate,
		logger:    logger,
		metrics:   metrics,
	}
}

// ReverseGeocode returns a human-readable address for c. It always
// returns a displayable string — worst case the coordinate formatted as
// "lat, lon" text. Out-of-bounds coordinates skip the network entirely.
func (r *ReverseResolver) ReverseGeocode(ctx context.Context, c domain.Coordinate) string {
	if !c.Valid() {
		return c.String()
	}

	c = c.Round4()
	key := c.Key()
	if addr, ok := r.cache.Get(key); ok {
		r.metrics.CacheLookups.WithLabelValues("reverse", "hit").Inc()
		return addr
	}
	r.metrics.CacheLookups.WithLabelValues("reverse", "miss").Inc()

	addr, _ := r.flight.Do(key, func() (string, error) {
		if addr, ok := r.cache.Get(key); ok {
			return addr, nil
		}
		// The lookup is shared by every coalesced caller and its outcome
		// is cached, so it must not inherit any one caller's cancellation.
		return r.lookup(context.WithoutCancel(ctx), c, key), nil
	})
	return addr
}

func (r *ReverseResolver) lookup(ctx context.Context, c domain.Coordinate, key string) string {
	if !r.gate.Allow() {
		// Hard backpressure: no network call this window. The refusal is
		// not a completed attempt, so nothing is cached.
		r.metrics.IntervalRejected.Inc()
		r.metrics.ResolveRequests.WithLabelValues("reverse_geocode", "fallback").Inc()
		return c.String()
	}

	if addr := r.query(ctx, r.primary, "primary", c); addr != "" {
		r.cache.Set(key, addr)
		r.metrics.ResolveRequests.WithLabelValues("reverse_geocode", "resolved").Inc()
		return addr
	}
	if addr := r.query(ctx, r.secondary, "secondary", c); addr != "" {
		r.cache.Set(key, addr)
		r.metrics.ResolveRequests.WithLabelValues("reverse_geocode", "resolved").Inc()
		return addr
	}

	// Both providers failed. Cache the coordinate text so the UI has a
	// displayable value and repeated failures stop re-dialing until the
	// entry expires.
	fallback := c.String()
	r.cache.Set(key, fallback)
	r.logger.Warn("reverse geocode exhausted providers", "coordinate", key)
	r.metrics.ResolveRequests.WithLabelValues("reverse_geocode", "fallback").Inc()
	return fallback
}

func (r *ReverseResolver) query(ctx context.Context, p domain.ReverseProvider, role string, c domain.Coordinate) string {
	if p == nil {
		return ""
	}
	res, err := p.Lookup(ctx, c)
	if err != nil {
		r.logger.Warn("reverse geocode provider failed", "role", role, "coordinate", c.Key(), "error", err)
		return ""
	}
	if res.Status != domain.StatusOK {
		return ""
	}
	return res.FormattedAddress
}
