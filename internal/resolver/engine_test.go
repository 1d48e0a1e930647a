package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/locationd/internal/cache"
	"github.com/couchcryptid/locationd/internal/domain"
)

func newTestEngine(geo *stubGeocoder, rev *stubReverse, router *stubRouter) *Engine {
	clock := clockwork.NewFakeClock()
	logger, metrics := testLogger(), testMetrics()

	var geocoder domain.GeocodingProvider
	if geo != nil {
		geocoder = geo
	}
	var reverse domain.ReverseProvider
	if rev != nil {
		reverse = rev
	}
	var routing domain.RoutingProvider
	if router != nil {
		routing = router
	}

	forward := NewForwardResolver(geocoder, nil,
		cache.NewStore[domain.Correction](time.Hour, clock),
		cache.NewStore[*domain.Coordinate](time.Hour, clock),
		"IN", logger, metrics)
	reverseResolver := NewReverseResolver(reverse, nil,
		cache.NewStore[string](time.Hour, clock),
		cache.NewIntervalGate(0), logger, metrics)
	distance := NewDistanceResolver(routing, nil,
		cache.NewStore[float64](0, clock),
		2000, time.Second, logger, metrics)

	return NewEngine(forward, reverseResolver, distance)
}

func TestEngine_Delegation(t *testing.T) {
	geo := &stubGeocoder{results: map[string]domain.GeocodeResult{
		"Munnar": okResult(10.0889, 77.0595, "Munnar"),
	}}
	rev := &stubReverse{result: okReverse("MG Road, Bengaluru")}
	router := &stubRouter{tag: "google", result: okRoute(290500)}
	e := newTestEngine(geo, rev, router)

	coord := e.Geocode(context.Background(), "Munnar", "")
	require.NotNil(t, coord)
	assert.Equal(t, 10.0889, coord.Lat)

	addr := e.ReverseGeocode(context.Background(), blr)
	assert.Equal(t, "MG Road, Bengaluru", addr)

	straight, ok := e.StraightLineKm(blr, maa)
	require.True(t, ok)
	assert.Greater(t, straight, float64(0))

	travel, ok := e.TravelKm(context.Background(), blr, maa)
	require.True(t, ok)
	assert.Equal(t, 290.5, travel)
}

func TestEngine_CheckReadiness(t *testing.T) {
	e := newTestEngine(nil, nil, nil)
	assert.NoError(t, e.CheckReadiness(context.Background()))

	broken := NewEngine(nil, nil, nil)
	assert.Error(t, broken.CheckReadiness(context.Background()))
}
