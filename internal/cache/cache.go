// Package cache provides the process-local caching primitives the
// resolution engine is built on: time-bounded key/value stores, an
// in-flight request deduplicator, and a minimum-interval gate. Everything
// here is in-memory and lost on restart — correctness only requires
// avoiding duplicate provider calls within a session, not durability.
package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Store is a thread-safe key/value cache with a per-store TTL. A zero TTL
// means entries never expire. Expiry is checked lazily on read; Sweep is
// available for callers that want to reclaim memory eagerly.
type Store[V any] struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu    sync.RWMutex
	items map[string]item[V]
}

type item[V any] struct {
	value     V
	writtenAt time.Time
}

// NewStore creates a Store with the given TTL. A nil clock defaults to the
// real clock; tests inject a fake for deterministic expiry.
func NewStore[V any](ttl time.Duration, clock clockwork.Clock) *Store[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store[V]{
		clock: clock,
		ttl:   ttl,
		items: make(map[string]item[V]),
	}
}

// Get returns the cached value for key. Expired entries behave as misses
// and are removed.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if s.expired(it) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if cur, still := s.items[key]; still && s.expired(cur) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return it.value, true
}

// Set stores value under key, resetting its TTL.
func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = item[V]{value: value, writtenAt: s.clock.Now()}
}

// Len returns the number of entries, expired or not.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep removes all expired entries and returns how many were dropped.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for k, it := range s.items {
		if s.expired(it) {
			delete(s.items, k)
			dropped++
		}
	}
	return dropped
}

func (s *Store[V]) expired(it item[V]) bool {
	return s.ttl > 0 && s.clock.Now().Sub(it.writtenAt) >= s.ttl
}
