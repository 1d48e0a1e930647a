package cache

import "golang.org/x/sync/singleflight"

// Group coalesces concurrent calls that share a key into a single
// execution: callers that arrive while a call for the same key is in
// flight block and receive that call's result instead of issuing a second
// one. The pending marker clears once the call settles, so later callers
// start fresh.
type Group[V any] struct {
	sf singleflight.Group
}

// Do runs fn once per key among concurrent callers and returns the shared
// result to all of them.
func (g *Group[V]) Do(key string, fn func() (V, error)) (V, error) {
	v, err, _ := g.sf.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
