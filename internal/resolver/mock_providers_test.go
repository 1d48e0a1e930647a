package resolver

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/locationd/internal/domain"
	"github.com/couchcryptid/locationd/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

// --- provider stubs ---

// stubGeocoder answers Search from a fixed query→result map; queries with
// no entry read as zero results. A non-nil err fails every call. Like the
// real adapters, it fails when its context is already dead.
type stubGeocoder struct {
	mu      sync.Mutex
	queries []string
	results map[string]domain.GeocodeResult
	err     error
	delay   time.Duration
}

func (s *stubGeocoder) Search(ctx context.Context, query string) (domain.GeocodeResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err := ctx.Err(); err != nil {
		return domain.GeocodeResult{Status: domain.StatusError}, err
	}
	if s.err != nil {
		return domain.GeocodeResult{Status: domain.StatusError}, s.err
	}
	if res, ok := s.results[query]; ok {
		return res, nil
	}
	return domain.GeocodeResult{Status: domain.StatusZeroResults}, nil
}

func (s *stubGeocoder) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *stubGeocoder) query(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[i]
}

type stubSuggester struct {
	suggestions []domain.Suggestion
	err         error
	calls       int
}

func (s *stubSuggester) Suggest(_ context.Context, _, _ string) ([]domain.Suggestion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.suggestions, nil
}

type stubReverse struct {
	result domain.ReverseResult
	err    error
	calls  int
}

func (s *stubReverse) Lookup(ctx context.Context, _ domain.Coordinate) (domain.ReverseResult, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, err
	}
	if s.err != nil {
		return domain.ReverseResult{Status: domain.StatusError}, s.err
	}
	return s.result, nil
}

type stubRouter struct {
	tag    string
	result domain.RouteResult
	err    error
	calls  int
}

func (s *stubRouter) Tag() string { return s.tag }

func (s *stubRouter) Route(ctx context.Context, _, _ domain.Coordinate) (domain.RouteResult, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return domain.RouteResult{Status: domain.StatusError}, err
	}
	if s.err != nil {
		return domain.RouteResult{Status: domain.StatusError}, s.err
	}
	return s.result, nil
}
