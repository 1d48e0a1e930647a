package domain

import (
	"fmt"
	"math"
)

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within WGS-84 bounds.
// Out-of-range coordinates are rejected, never clamped.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Round4 rounds both components to 4 decimal places (~11 m). Cache keys use
// this precision so GPS jitter does not fragment the cache.
func (c Coordinate) Round4() Coordinate {
	return Coordinate{Lat: round4(c.Lat), Lon: round4(c.Lon)}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// Key returns the canonical cache key for the coordinate at 4-decimal precision.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// String formats the coordinate as display text, e.g. "12.9716, 77.5946".
// Used as the last-resort reverse-geocode answer so the UI always has
// something to show.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// HaversineKm computes the great-circle distance between two points in
// kilometers using the haversine formula with a spherical Earth of radius
// 6371 km. Callers are expected to validate bounds first.
func HaversineKm(a, b Coordinate) float64 {
	const earthRadiusKm = 6371

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
