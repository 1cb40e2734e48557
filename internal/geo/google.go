package geo

import (
	"context"
	"fmt"
	"log"
	"time"

	"googlemaps.github.io/maps"

	"ridehail/internal/domain"
)

// callTimeout bounds every maps API call so a slow upstream cannot stall a
// ride request.
const callTimeout = 3 * time.Second

// GoogleProvider implements Provider on top of the Google Maps API. With an
// empty API key it degrades to the fallback values, which keeps local
// development working without credentials.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a Google Maps backed provider. An empty apiKey
// yields a provider that always answers with the fallbacks.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return &GoogleProvider{}, nil
	}

	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Geocode resolves a postcode to coordinates, falling back to the reference
// coordinate on any failure.
func (p *GoogleProvider) Geocode(ctx context.Context, postcode string) (float64, float64) {
	if p.client == nil {
		return FallbackLatitude, FallbackLongitude
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: postcode})
	if err != nil || len(results) == 0 {
		log.Printf("geocode fallback for %q: %v", postcode, err)
		return FallbackLatitude, FallbackLongitude
	}

	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng
}

// Distance returns the driving distance between two locations in kilometers,
// falling back to the reference distance on any failure.
func (p *GoogleProvider) Distance(ctx context.Context, from, to domain.Location) float64 {
	if p.client == nil {
		return FallbackDistanceKm
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := p.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", from.Latitude, from.Longitude)},
		Destinations: []string{fmt.Sprintf("%f,%f", to.Latitude, to.Longitude)},
		Units:        maps.UnitsMetric,
	})
	if err != nil {
		log.Printf("distance matrix fallback: %v", err)
		return FallbackDistanceKm
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 || resp.Rows[0].Elements[0].Status != "OK" {
		return FallbackDistanceKm
	}

	return float64(resp.Rows[0].Elements[0].Distance.Meters) / 1000.0
}

var _ Provider = (*GoogleProvider)(nil)
