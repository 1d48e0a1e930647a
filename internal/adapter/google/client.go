// Package google adapts the Google Maps web service APIs (Geocoding,
// Places Autocomplete, Distance Matrix) to the engine's provider
// interfaces.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

const providerName = "google"

// Client implements the engine's geocoding, suggestion, reverse, and
// routing provider interfaces against the Google Maps APIs.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Google Maps client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api",
		logger:  logger,
		metrics: metrics,
	}
}

// Tag implements domain.RoutingProvider.
func (c *Client) Tag() string { return providerName }

// Search resolves a free-text query via the Geocoding API.
func (c *Client) Search(ctx context.Context, query string) (domain.GeocodeResult, error) {
	params := url.Values{
		"address": {query},
		"key":     {c.apiKey},
	}

	var resp geocodeResponse
	status, err := c.doRequest(ctx, "search", c.baseURL+"/geocode/json?"+params.Encode(), &resp)
	if err != nil {
		return domain.GeocodeResult{Status: domain.StatusError}, err
	}
	if status != domain.StatusOK || len(resp.Results) == 0 {
		return domain.GeocodeResult{Status: domain.StatusZeroResults}, nil
	}

	first := resp.Results[0]
	return domain.GeocodeResult{
		Status: domain.StatusOK,
		Coordinate: domain.Coordinate{
			Lat: first.Geometry.Location.Lat,
			Lon: first.Geometry.Location.Lng,
		},
		CanonicalName: first.canonicalName(),
	}, nil
}

// Lookup resolves coordinates to a formatted address via the Geocoding
// API's latlng mode.
func (c *Client) Lookup(ctx context.Context, coord domain.Coordinate) (domain.ReverseResult, error) {
	params := url.Values{
		"latlng": {fmt.Sprintf("%.6f,%.6f", coord.Lat, coord.Lon)},
		"key":    {c.apiKey},
	}

	var resp geocodeResponse
	status, err := c.doRequest(ctx, "lookup", c.baseURL+"/geocode/json?"+params.Encode(), &resp)
	if err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, err
	}
	if status != domain.StatusOK || len(resp.Results) == 0 {
		return domain.ReverseResult{Status: domain.StatusZeroResults}, nil
	}

	return domain.ReverseResult{
		Status:           domain.StatusOK,
		FormattedAddress: resp.Results[0].FormattedAddress,
	}, nil
}

// Suggest returns autocomplete candidates for a query, optionally scoped
// to a country.
func (c *Client) Suggest(ctx context.Context, query, countryHint string) ([]domain.Suggestion, error) {
	params := url.Values{
		"input": {query},
		"key":   {c.apiKey},
	}
	if countryHint != "" {
		params.Set("components", "country:"+countryHint)
	}

	var resp autocompleteResponse
	status, err := c.doRequest(ctx, "suggest", c.baseURL+"/place/autocomplete/json?"+params.Encode(), &resp)
	if err != nil {
		return nil, err
	}
	if status != domain.StatusOK {
		return nil, nil
	}

	suggestions := make([]domain.Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		suggestions = append(suggestions, domain.Suggestion{Name: p.Description})
	}
	return suggestions, nil
}

// Route computes a driving distance via the Distance Matrix API.
func (c *Client) Route(ctx context.Context, origin, dest domain.Coordinate) (domain.RouteResult, error) {
	params := url.Values{
		"origins":      {fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lon)},
		"destinations": {fmt.Sprintf("%.6f,%.6f", dest.Lat, dest.Lon)},
		"key":          {c.apiKey},
	}

	var resp distanceMatrixResponse
	status, err := c.doRequest(ctx, "route", c.baseURL+"/distancematrix/json?"+params.Encode(), &resp)
	if err != nil {
		return domain.RouteResult{Status: domain.StatusError}, err
	}
	if status != domain.StatusOK || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return domain.RouteResult{Status: domain.StatusZeroResults}, nil
	}

	el := resp.Rows[0].Elements[0]
	switch mapStatus(el.Status) {
	case domain.StatusOK:
		return domain.RouteResult{
			Status:         domain.StatusOK,
			DistanceMeters: el.Distance.Value,
		}, nil
	case domain.StatusZeroResults:
		return domain.RouteResult{Status: domain.StatusZeroResults}, nil
	default:
		return domain.RouteResult{Status: domain.StatusError},
			fmt.Errorf("google distance matrix element status %q", el.Status)
	}
}

// doRequest performs a GET, decodes the shared {status, ...} envelope into
// out, and maps the provider status. Hard statuses (rate limit, denied,
// unknown) come back as errors.
func (c *Client) doRequest(ctx context.Context, method, fullURL string, out statusCarrier) (domain.Status, error) {
	start := time.Now()
	status, err := c.do(ctx, fullURL, out)
	c.metrics.ProviderDuration.WithLabelValues(providerName, method).Observe(time.Since(start).Seconds())

	outcome := status.String()
	if err != nil {
		outcome = domain.StatusError.String()
		c.logger.Warn("google request failed", "method", method, "error", err)
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, method, outcome).Inc()
	return status, err
}

func (c *Client) do(ctx context.Context, fullURL string, out statusCarrier) (domain.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.StatusError, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StatusError, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.StatusError, fmt.Errorf("google API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.StatusError, fmt.Errorf("decode response: %w", err)
	}

	status := mapStatus(out.status())
	if status == domain.StatusError {
		return status, fmt.Errorf("google API status %q", out.status())
	}
	return status, nil
}

// mapStatus translates a Google API status string. Anything that is not a
// clean hit or a clean miss — OVER_QUERY_LIMIT included — is a hard
// failure that drives the caller down its fallback chain.
func mapStatus(s string) domain.Status {
	switch s {
	case "OK":
		return domain.StatusOK
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.StatusZeroResults
	default:
		return domain.StatusError
	}
}

// Google API response types.

type statusCarrier interface {
	status() string
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

func (r *geocodeResponse) status() string { return r.Status }

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// canonicalName prefers the most specific address component; full
// formatted addresses make poor learned corrections.
func (r geocodeResult) canonicalName() string {
	if len(r.AddressComponents) > 0 && r.AddressComponents[0].LongName != "" {
		return r.AddressComponents[0].LongName
	}
	return r.FormattedAddress
}

type addressComponent struct {
	LongName string `json:"long_name"`
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		Description string `json:"description"`
	} `json:"predictions"`
}

func (r *autocompleteResponse) status() string { return r.Status }

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func (r *distanceMatrixResponse) status() string { return r.Status }
