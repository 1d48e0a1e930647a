// Package resolver orchestrates external geocoding and routing providers
// into cached, fallback-safe location answers. Every public entry point is
// total: provider failures degrade the answer, they never reach callers as
// errors.
package resolver

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

// ForwardResolver resolves free-text place names to coordinates. It walks
// generated name variations against the primary provider, falls back to
// similarity-ranked autocomplete candidates, and finally retries with an
// appended country name. Successful resolutions through a non-identical
// variant are remembered as corrections for later queries.
type ForwardResolver struct {
	primary     domain.GeocodingProvider
	suggestions domain.SuggestionProvider
	variations  *domain.VariationGenerator
	corrections *cache.Store[domain.Correction]
	results     *cache.Store[*domain.Coordinate]
	flight      cache.Group[*domain.Coordinate]

	defaultCountry string
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// NewForwardResolver creates a ForwardResolver. Providers may be nil, in
// which case resolution degrades to an immediate unresolved answer.
func NewForwardResolver(
	primary domain.GeocodingProvider,
	suggestions domain.SuggestionProvider,
	corrections *cache.Store[domain.Correction],
	results *cache.Store[*domain.Coordinate],
	defaultCountry string,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *ForwardResolver {
	return &ForwardResolver{
		primary:        primary,
		suggestions:    suggestions,
		variations:     domain.NewVariationGenerator(corrections),
		corrections:    corrections,
		results:        results,
		defaultCountry: defaultCountry,
		logger:         logger,
		metrics:        metrics,
	}
}

// Geocode resolves address to a coordinate, or nil when no provider
// strategy matched. nil is an expected outcome, not a fault. Results —
// failures included — are cached, and concurrent calls for the same query
// share a single resolution.
func (r *ForwardResolver) Geocode(ctx context.Context, address, countryHint string) *domain.Coordinate {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil
	}

	key := resolveKey(address, countryHint)
	if coord, ok := r.results.Get(key); ok {
		r.metrics.CacheLookups.WithLabelValues("geocode", "hit").Inc()
		return coord
	}
	r.metrics.CacheLookups.WithLabelValues("geocode", "miss").Inc()

	coord, _ := r.flight.Do(key, func() (*domain.Coordinate, error) {
		// A coalesced caller can land here right after the previous flight
		// settled; the cache makes that a no-op.
		if coord, ok := r.results.Get(key); ok {
			return coord, nil
		}
		// The resolution is shared by every coalesced caller and its
		// outcome is cached, so it must not inherit any one caller's
		// cancellation; an interrupted attempt would poison the cache.
		coord := r.resolve(context.WithoutCancel(ctx), address, countryHint)
		r.results.Set(key, coord)
		return coord, nil
	})

	outcome := "resolved"
	if coord == nil {
		outcome = "unresolved"
	}
	r.metrics.ResolveRequests.WithLabelValues("geocode", outcome).Inc()
	return coord
}

func (r *ForwardResolver) resolve(ctx context.Context, address, countryHint string) *domain.Coordinate {
	if r.primary == nil {
		return nil
	}

	vars := r.variations.Generate(address)
	if coord := r.tryVariations(ctx, address, countryHint, vars); coord != nil {
		return coord
	}
	if coord := r.trySuggestions(ctx, address, countryHint); coord != nil {
		return coord
	}
	if coord := r.tryCountryName(ctx, vars[0], countryHint); coord != nil {
		return coord
	}

	r.logger.Warn("geocode exhausted every strategy", "address", address)
	return nil
}

// tryVariations walks the variant list against the primary provider. A
// soft miss moves to the next variant; a hard failure abandons the loop —
// walking more variants would only hammer a broken endpoint.
func (r *ForwardResolver) tryVariations(ctx context.Context, original, countryHint string, vars []string) *domain.Coordinate {
	for _, v := range vars {
		res, err := r.primary.Search(ctx, withHint(v, countryHint))
		if err != nil {
			r.logger.Warn("geocoding provider failed", "query", v, "error", err)
			return nil
		}
		switch res.Status {
		case domain.StatusZeroResults:
			continue
		case domain.StatusOK:
			if !res.Coordinate.Valid() {
				r.logger.Warn("provider returned out-of-bounds coordinate",
					"query", v, "lat", res.Coordinate.Lat, "lon", res.Coordinate.Lon)
				continue
			}
			r.learnCorrection(original, v, res.CanonicalName)
			coord := res.Coordinate
			return &coord
		default:
			return nil
		}
	}
	return nil
}

// trySuggestions asks the autocomplete provider for candidates, ranks them
// by similarity to the original query, and geocodes each in ranked order.
func (r *ForwardResolver) trySuggestions(ctx context.Context, original, countryHint string) *domain.Coordinate {
	if r.suggestions == nil {
		return nil
	}

	sugs, err := r.suggestions.Suggest(ctx, original, countryHint)
	if err != nil {
		r.logger.Warn("suggestion provider failed", "address", original, "error", err)
		return nil
	}

	for _, name := range rankBySimilarity(original, sugs) {
		res, err := r.primary.Search(ctx, withHint(name, countryHint))
		if err != nil {
			r.logger.Warn("geocoding provider failed", "query", name, "error", err)
			return nil
		}
		switch res.Status {
		case domain.StatusZeroResults:
			continue
		case domain.StatusOK:
			if !res.Coordinate.Valid() {
				continue
			}
			r.learnCorrection(original, name, res.CanonicalName)
			coord := res.Coordinate
			return &coord
		default:
			return nil
		}
	}
	return nil
}

// tryCountryName is the last-resort attempt: the first generated variation
// suffixed with a human-readable country name.
func (r *ForwardResolver) tryCountryName(ctx context.Context, firstVariation, countryHint string) *domain.Coordinate {
	query := firstVariation + ", " + domain.CountryName(countryHint, r.defaultCountry)
	res, err := r.primary.Search(ctx, query)
	if err != nil {
		r.logger.Warn("geocoding provider failed", "query", query, "error", err)
		return nil
	}
	if res.Status != domain.StatusOK || !res.Coordinate.Valid() {
		return nil
	}
	coord := res.Coordinate
	return &coord
}

// learnCorrection records original → canonical when a non-identical
// variant or suggestion produced the hit. An existing correction is only
// overwritten by a name at least as similar to the original query, so a
// degraded provider answer cannot clobber a better one.
func (r *ForwardResolver) learnCorrection(original, matched, canonical string) {
	if strings.EqualFold(matched, original) {
		return
	}
	if canonical == "" {
		canonical = matched
	}

	key := strings.ToLower(original)
	sim := domain.Similarity(original, canonical)
	if cur, ok := r.corrections.Get(key); ok && sim < cur.Similarity {
		return
	}
	r.corrections.Set(key, domain.Correction{Name: canonical, Similarity: sim})
}

func rankBySimilarity(original string, sugs []domain.Suggestion) []string {
	type scored struct {
		name  string
		score float64
	}
	ranked := make([]scored, 0, len(sugs))
	for _, s := range sugs {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		ranked = append(ranked, scored{name: s.Name, score: domain.Similarity(original, s.Name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	names := make([]string, len(ranked))
	for i, s := range ranked {
		names[i] = s.name
	}
	return names
}

func withHint(query, countryHint string) string {
	if countryHint == "" {
		return query
	}
	return query + ", " + countryHint
}

func resolveKey(address, countryHint string) string {
	return strings.ToLower(address) + "|" + strings.ToLower(strings.TrimSpace(countryHint))
}
