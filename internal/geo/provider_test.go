package geo

import (
	"context"
	"testing"

	"ridehail/internal/domain"
)

func TestGoogleProvider_NoKeyUsesFallbacks(t *testing.T) {
	t.Parallel()

	provider, err := NewGoogleProvider("")
	if err != nil {
		t.Fatalf("NewGoogleProvider: %v", err)
	}

	lat, lng := provider.Geocode(context.Background(), "SW1A 1AA")
	if lat != FallbackLatitude || lng != FallbackLongitude {
		t.Errorf("Geocode = (%v, %v), want fallbacks (%v, %v)",
			lat, lng, FallbackLatitude, FallbackLongitude)
	}

	from := domain.Location{Latitude: 51.5, Longitude: -0.12}
	to := domain.Location{Latitude: 51.52, Longitude: -0.07}
	if got := provider.Distance(context.Background(), from, to); got != FallbackDistanceKm {
		t.Errorf("Distance = %v, want fallback %v", got, FallbackDistanceKm)
	}
}
