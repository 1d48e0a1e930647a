package nominatim

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, "locationd-test/1.0", 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
}

func TestClient_Lookup_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "12.971600", r.URL.Query().Get("lat"))
		assert.Equal(t, "77.594600", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "locationd-test/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name": "Mahatma Gandhi Road, Bengaluru, Karnataka, India"}`))
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Lookup(context.Background(), domain.Coordinate{Lat: 12.9716, Lon: 77.5946})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, "Mahatma Gandhi Road, Bengaluru, Karnataka, India", res.FormattedAddress)
}

func TestClient_Lookup_UnableToGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": "Unable to geocode"}`))
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Lookup(context.Background(), domain.Coordinate{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusZeroResults, res.Status)
}

func TestClient_Lookup_EmptyDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name": ""}`))
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Lookup(context.Background(), domain.Coordinate{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusZeroResults, res.Status)
}

func TestClient_Lookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	res, err := testClient(srv.URL).Lookup(context.Background(), domain.Coordinate{Lat: 12.9716, Lon: 77.5946})
	require.Error(t, err)
	assert.Equal(t, domain.StatusError, res.Status)
}

func TestClient_HardFailureLogsWarning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := NewClient(srv.URL, "locationd-test/1.0", 5*time.Second,
		slog.New(slog.NewTextHandler(&buf, nil)),
		observability.NewMetricsForTesting())

	_, err := c.Lookup(context.Background(), domain.Coordinate{Lat: 12.9716, Lon: 77.5946})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "nominatim request failed")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := testClient("")
	assert.Equal(t, "https://nominatim.openstreetmap.org", c.baseURL)
}
