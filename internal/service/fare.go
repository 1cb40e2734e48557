package service

import "ridehail/internal/domain"

// Fare pricing constants. The per-kilometer rate depends on the ride
// category; the base fare does not.
const (
	BaseFare        = 5.0
	RateStandardKm  = 2.0
	RatePoolKm      = 1.5
	RateLuxuryKm    = 3.5
)

// FareCalculator computes ride fares. It is pure: same inputs, same fare,
// no side effects.
type FareCalculator struct{}

// NewFareCalculator creates a new FareCalculator.
func NewFareCalculator() *FareCalculator {
	return &FareCalculator{}
}

// Calculate returns the fare for a ride:
//
//	fare = (BaseFare + distanceKm * rate[category]) * surge
//
// A negative distance is clamped to zero rather than treated as an error,
// and a surge below 1.0 is clamped to 1.0. Unknown categories price at the
// standard rate.
func (c *FareCalculator) Calculate(distanceKm float64, category domain.RideCategory, surge float64) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if surge < 1.0 {
		surge = 1.0
	}

	return (BaseFare + distanceKm*ratePerKm(category)) * surge
}

func ratePerKm(category domain.RideCategory) float64 {
	switch category {
	case domain.RideCategoryPool:
		return RatePoolKm
	case domain.RideCategoryLuxury:
		return RateLuxuryKm
	default:
		return RateStandardKm
	}
}
