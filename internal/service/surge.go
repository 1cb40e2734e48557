package service

import (
	"context"

	"ridehail/internal/domain"
	"ridehail/internal/redis"
	"ridehail/internal/repository"
)

// SurgeService calculates surge pricing from supply and demand around the
// pickup point. The multiplier is fixed at request time and stored on the
// ride, so later settlement never recomputes it.
type SurgeService struct {
	locationStore redis.LocationStoreInterface
	rideRepo      repository.RideRepository
}

// NewSurgeService creates a new SurgeService.
func NewSurgeService(
	locationStore redis.LocationStoreInterface,
	rideRepo repository.RideRepository,
) *SurgeService {
	return &SurgeService{
		locationStore: locationStore,
		rideRepo:      rideRepo,
	}
}

// SurgeConfig contains surge pricing configuration.
type SurgeConfig struct {
	RadiusKm       float64 // Radius to check for supply/demand
	LowSurgeRatio  float64 // Demand/supply ratio for 1.25x surge
	MedSurgeRatio  float64 // Demand/supply ratio for 1.5x surge
	HighSurgeRatio float64 // Demand/supply ratio for 2.0x surge
	MaxSurge       float64 // Maximum surge multiplier
}

// DefaultSurgeConfig returns the default surge configuration.
func DefaultSurgeConfig() SurgeConfig {
	return SurgeConfig{
		RadiusKm:       5.0,
		LowSurgeRatio:  1.2,
		MedSurgeRatio:  1.5,
		HighSurgeRatio: 2.0,
		MaxSurge:       2.0,
	}
}

// GetMultiplier calculates the surge multiplier for a given location.
// Returns 1.0 if no surge, up to MaxSurge if demand outstrips supply.
func (s *SurgeService) GetMultiplier(ctx context.Context, lat, lng float64) float64 {
	config := DefaultSurgeConfig()

	supply := s.countDriversInArea(ctx, lat, lng, config.RadiusKm)
	demand := s.countWaitingRequestsInArea(ctx, lat, lng, config.RadiusKm)

	return s.calculateSurgeMultiplier(supply, demand, config)
}

// countDriversInArea returns the number of online drivers within radius.
func (s *SurgeService) countDriversInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	drivers, err := s.locationStore.FindNearbyDrivers(ctx, lat, lng, radiusKm)
	if err != nil {
		// Fail open: a generous supply estimate avoids false surge when
		// Redis is unavailable.
		return 10
	}
	return len(drivers)
}

// countWaitingRequestsInArea returns the number of unaccepted ride requests
// whose pickup falls within radius.
func (s *SurgeService) countWaitingRequestsInArea(ctx context.Context, lat, lng, radiusKm float64) int {
	rides, err := s.rideRepo.GetByStatus(ctx, domain.RideStatusRequested)
	if err != nil {
		return 0
	}

	count := 0
	for _, ride := range rides {
		// Equirectangular approximation, 1 degree is roughly 111km.
		latDiff := (ride.Pickup.Latitude - lat) * 111
		lngDiff := (ride.Pickup.Longitude - lng) * 111

		if latDiff*latDiff+lngDiff*lngDiff <= radiusKm*radiusKm {
			count++
		}
	}

	return count
}

// calculateSurgeMultiplier determines the multiplier from the
// demand/supply ratio.
func (s *SurgeService) calculateSurgeMultiplier(supply, demand int, config SurgeConfig) float64 {
	if supply == 0 {
		if demand > 0 {
			return config.MaxSurge
		}
		return 1.0
	}

	ratio := float64(demand) / float64(supply)

	switch {
	case ratio >= config.HighSurgeRatio:
		return config.MaxSurge
	case ratio >= config.MedSurgeRatio:
		return 1.5
	case ratio >= config.LowSurgeRatio:
		return 1.25
	default:
		return 1.0
	}
}
