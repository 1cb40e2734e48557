package repository

import (
	"context"

	"ridehail/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetActiveByPassenger retrieves the passenger's ride in
	// REQUESTED/ACCEPTED/PICKED_UP, or nil if none exists.
	GetActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error)

	// GetByStatus retrieves rides in the given status, newest first.
	GetByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error)

	// GetHistoryByPassenger retrieves the passenger's non-cancelled rides,
	// newest first.
	GetHistoryByPassenger(ctx context.Context, passengerID string) ([]*domain.Ride, error)

	// GetHistoryByDriver retrieves the driver's non-cancelled rides,
	// newest first.
	GetHistoryByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// CompareAndTransition writes the ride row guarded on the expected prior
	// status. It returns ErrStatusConflict if the persisted status no longer
	// matches from, and ErrNotFound if the ride does not exist.
	CompareAndTransition(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error

	// SetRating writes the ride's rating guarded on the ride being
	// COMPLETED and not yet rated. It returns ErrAlreadyRated if a rating
	// is already set, ErrStatusConflict if the ride is not COMPLETED, and
	// ErrNotFound if the ride does not exist.
	SetRating(ctx context.Context, id string, rating int) error
}
