package domain

import "context"

// Status classifies a provider response. A soft miss (no match for the
// query) drives fallback progression and is not an error; hard failures
// (timeouts, rate limits, malformed responses) surface as Go errors from
// the provider call and map to StatusError.
type Status int

const (
	StatusOK Status = iota
	StatusZeroResults
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusZeroResults:
		return "zero_results"
	default:
		return "error"
	}
}

// GeocodeResult is the outcome of a forward geocoding query.
type GeocodeResult struct {
	Status        Status
	Coordinate    Coordinate
	CanonicalName string // provider's canonical name for the matched place
}

// ReverseResult is the outcome of a reverse geocoding lookup.
type ReverseResult struct {
	Status           Status
	FormattedAddress string
}

// Suggestion is a candidate place name from an autocomplete provider.
// Suggestions live only for the duration of a single resolution attempt;
// only the correction eventually learned from one is cached.
type Suggestion struct {
	Name string
}

// RouteResult is the outcome of a travel-distance query.
type RouteResult struct {
	Status         Status
	DistanceMeters float64
}

// GeocodingProvider resolves a free-text query to coordinates.
type GeocodingProvider interface {
	Search(ctx context.Context, query string) (GeocodeResult, error)
}

// SuggestionProvider returns candidate place names for a partial or
// misspelled query, optionally scoped to a country.
type SuggestionProvider interface {
	Suggest(ctx context.Context, query, countryHint string) ([]Suggestion, error)
}

// ReverseProvider resolves coordinates to a formatted address.
type ReverseProvider interface {
	Lookup(ctx context.Context, c Coordinate) (ReverseResult, error)
}

// RoutingProvider computes a travel distance between two coordinates.
// Tag names the provider's cache namespace.
type RoutingProvider interface {
	Tag() string
	Route(ctx context.Context, origin, dest Coordinate) (RouteResult, error)
}
