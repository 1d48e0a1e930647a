package cache

import (
	"time"

	"golang.org/x/time/rate"
)

// IntervalGate admits at most one call per minimum interval on a logical
// channel. Allow never blocks: a refused caller must degrade to cached or
// fallback data, not wait and retry.
type IntervalGate struct {
	limiter *rate.Limiter
}

// NewIntervalGate creates a gate with the given minimum interval between
// admitted calls. A non-positive interval admits everything.
func NewIntervalGate(minInterval time.Duration) *IntervalGate {
	if minInterval <= 0 {
		return &IntervalGate{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalGate{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Allow reports whether a call may proceed now.
func (g *IntervalGate) Allow() bool {
	return g.limiter.Allow()
}
