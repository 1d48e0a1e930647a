// Package nominatim adapts the OSM Nominatim reverse-geocoding API to the
// engine's reverse provider interface. It is the fallback address source
// when the primary provider is unavailable.
package nominatim

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

const providerName = "nominatim"

// Client implements domain.ReverseProvider against a Nominatim server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Nominatim client. An empty baseURL uses the public
// endpoint; the usage policy there requires an identifying User-Agent.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   baseURL,
		userAgent: userAgent,
		logger:    logger,
		metrics:   metrics,
	}
}

// Lookup resolves coordinates to a display name.
func (c *Client) Lookup(ctx context.Context, coord domain.Coordinate) (domain.ReverseResult, error) {
	params := url.Values{
		"lat":    {fmt.Sprintf("%.6f", coord.Lat)},
		"lon":    {fmt.Sprintf("%.6f", coord.Lon)},
		"format": {"json"},
	}

	start := time.Now()
	result, err := c.lookup(ctx, c.baseURL+"/reverse?"+params.Encode())
	c.metrics.ProviderDuration.WithLabelValues(providerName, "lookup").Observe(time.Since(start).Seconds())

	outcome := result.Status.String()
	if err != nil {
		outcome = domain.StatusError.String()
		c.logger.Warn("nominatim request failed", "error", err)
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "lookup", outcome).Inc()
	return result, err
}

func (c *Client) lookup(ctx context.Context, fullURL string) (domain.ReverseResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.ReverseResult{Status: domain.StatusError},
			fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var nomResp response
	if err := json.NewDecoder(resp.Body).Decode(&nomResp); err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, fmt.Errorf("decode response: %w", err)
	}

	// Nominatim reports "unable to geocode" as a 200 with an error field.
	if nomResp.Error != "" || nomResp.DisplayName == "" {
		return domain.ReverseResult{Status: domain.StatusZeroResults}, nil
	}
	return domain.ReverseResult{
		Status:           domain.StatusOK,
		FormattedAddress: nomResp.DisplayName,
	}, nil
}

// Nominatim API response types.

type response struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}
