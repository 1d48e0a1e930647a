package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/domain"
)

func okReverse(address string) domain.ReverseResult {
	return domain.ReverseResult{Status: domain.StatusOK, FormattedAddress: address}
}

func newReverseResolver(primary, secondary *stubReverse, gate *cache.IntervalGate) (*ReverseResolver, *cache.Store[string]) {
	store := cache.NewStore[string](time.Hour, clockwork.NewFakeClock())
	if gate == nil {
		gate = cache.NewIntervalGate(0)
	}

	var p, s domain.ReverseProvider
	if primary != nil {
		p = primary
	}
	if secondary != nil {
		s = secondary
	}
	return NewReverseResolver(p, s, store, gate, testLogger(), testMetrics()), store
}

var bangalore = domain.Coordinate{Lat: 12.9716, Lon: 77.5946}

func TestReverseResolver_PrimaryResolves(t *testing.T) {
	primary := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	r, _ := newReverseResolver(primary, nil, nil)

	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "MG Road, Bengaluru", got)
	assert.Equal(t, 1, primary.calls)
}

func TestReverseResolver_InvalidCoordinateSkipsNetwork(t *testing.T) {
	primary := &stubReverse{result: okReverse("should not be called")}
	r, _ := newReverseResolver(primary, nil, nil)

	got := r.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 91, Lon: 0})
	assert.Equal(t, "91.0000, 0.0000", got)
	assert.Equal(t, 0, primary.calls)
}

func TestReverseResolver_CacheHitSkipsNetwork(t *testing.T) {
	primary := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	r, _ := newReverseResolver(primary, nil, nil)

	first := r.ReverseGeocode(context.Background(), bangalore)
	second := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, primary.calls)
}

func TestReverseResolver_JitteredCoordinatesShareEntry(t *testing.T) {
	primary := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	r, _ := newReverseResolver(primary, nil, nil)

	r.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 12.97160001, Lon: 77.59459999})
	r.ReverseGeocode(context.Background(), domain.Coordinate{Lat: 12.97159999, Lon: 77.59460001})
	assert.Equal(t, 1, primary.calls, "coordinates within rounding distance should share a cache entry")
}

func TestReverseResolver_FallsBackToSecondary(t *testing.T) {
	primary := &stubReverse{err: errors.New("quota exceeded")}
	secondary := &stubReverse{result: okReverse("Bengaluru, Karnataka, India")}
	r, _ := newReverseResolver(primary, secondary, nil)

	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "Bengaluru, Karnataka, India", got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestReverseResolver_ZeroResultsTriesSecondary(t *testing.T) {
	primary := &stubReverse{result: domain.ReverseResult{Status: domain.StatusZeroResults}}
	secondary := &stubReverse{result: okReverse("Bengaluru, Karnataka, India")}
	r, _ := newReverseResolver(primary, secondary, nil)

	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "Bengaluru, Karnataka, India", got)
}

func TestReverseResolver_BothFailCachesCoordinateText(t *testing.T) {
	primary := &stubReverse{err: errors.New("down")}
	secondary := &stubReverse{err: errors.New("down too")}
	r, store := newReverseResolver(primary, secondary, nil)

	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "12.9716, 77.5946", got)

	cached, ok := store.Get(bangalore.Key())
	require.True(t, ok, "the textual fallback should be cached to stop re-dialing")
	assert.Equal(t, "12.9716, 77.5946", cached)

	r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, 1, primary.calls)
}

func TestReverseResolver_GateRefusalNotCached(t *testing.T) {
	primary := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	gate := cache.NewIntervalGate(time.Hour)
	r, store := newReverseResolver(primary, nil, gate)

	// First lookup consumes the interval window.
	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "MG Road, Bengaluru", got)

	// A different coordinate inside the window degrades to text and
	// leaves no cache entry behind.
	other := domain.Coordinate{Lat: 13.0827, Lon: 80.2707}
	got = r.ReverseGeocode(context.Background(), other)
	assert.Equal(t, "13.0827, 80.2707", got)
	assert.Equal(t, 1, primary.calls)

	_, ok := store.Get(other.Key())
	assert.False(t, ok, "a gate refusal is not a completed attempt")
}

func TestReverseResolver_CanceledCallerDoesNotPoisonCache(t *testing.T) {
	primary := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	r, store := newReverseResolver(primary, nil, nil)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	got := r.ReverseGeocode(canceled, bangalore)
	assert.Equal(t, "MG Road, Bengaluru", got,
		"a dead caller context must not degrade the lookup to coordinate text")

	cached, ok := store.Get(bangalore.Key())
	require.True(t, ok)
	assert.Equal(t, "MG Road, Bengaluru", cached)

	got = r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "MG Road, Bengaluru", got)
	assert.Equal(t, 1, primary.calls)
}

func TestReverseResolver_NoProviders(t *testing.T) {
	r, _ := newReverseResolver(nil, nil, nil)

	got := r.ReverseGeocode(context.Background(), bangalore)
	assert.Equal(t, "12.9716, 77.5946", got)
}
