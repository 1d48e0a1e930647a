// Package osrm adapts the OSRM routing HTTP API to the engine's routing
// provider interface. It serves as the open fallback when the primary
// driving-distance provider fails.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

const providerName = "osrm"

// Client implements domain.RoutingProvider against an OSRM server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OSRM routing client. An empty baseURL uses the
// public demo server.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Tag implements domain.RoutingProvider.
func (c *Client) Tag() string { return providerName }

// Route computes a driving distance. OSRM wants lon,lat order.
func (c *Client) Route(ctx context.Context, origin, dest domain.Coordinate) (domain.RouteResult, error) {
	fullURL := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=false",
		c.baseURL, origin.Lon, origin.Lat, dest.Lon, dest.Lat)

	start := time.Now()
	result, err := c.route(ctx, fullURL)
	c.metrics.ProviderDuration.WithLabelValues(providerName, "route").Observe(time.Since(start).Seconds())

	outcome := result.Status.String()
	if err != nil {
		outcome = domain.StatusError.String()
		c.logger.Warn("osrm request failed", "error", err)
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "route", outcome).Inc()
	return result, err
}

func (c *Client) route(ctx context.Context, fullURL string) (domain.RouteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.RouteResult{Status: domain.StatusError}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RouteResult{Status: domain.StatusError}, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	// OSRM reports routing misses with a 400 and a code in the body, so
	// decode before judging the HTTP status.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RouteResult{Status: domain.StatusError},
			fmt.Errorf("osrm API error: status %d: %s", resp.StatusCode, body)
	}

	var osrmResp response
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return domain.RouteResult{Status: domain.StatusError}, fmt.Errorf("decode response: %w", err)
	}

	switch osrmResp.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return domain.RouteResult{Status: domain.StatusZeroResults}, nil
	default:
		return domain.RouteResult{Status: domain.StatusError}, fmt.Errorf("osrm code %q", osrmResp.Code)
	}

	if len(osrmResp.Routes) == 0 {
		return domain.RouteResult{Status: domain.StatusZeroResults}, nil
	}
	return domain.RouteResult{
		Status:         domain.StatusOK,
		DistanceMeters: osrmResp.Routes[0].Distance,
	}, nil
}

// OSRM API response types.

type response struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}
