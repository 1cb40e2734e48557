package geo

import (
	"context"

	"ridehail/internal/domain"
)

// Fallbacks used when the maps backend is unavailable or misconfigured. A
// ride request must not fail because geocoding did: callers get a fixed
// reference coordinate and distance instead of an error.
const (
	FallbackLatitude   = 51.5074
	FallbackLongitude  = -0.1278
	FallbackDistanceKm = 5.0
)

// Provider resolves postal addresses and computes travel distances. The ride
// core depends on this interface only; implementations must return the
// documented fallbacks rather than errors.
type Provider interface {
	// Geocode resolves a postcode to coordinates.
	Geocode(ctx context.Context, postcode string) (lat, lng float64)

	// Distance returns the travel distance between two locations in
	// kilometers.
	Distance(ctx context.Context, from, to domain.Location) float64
}
