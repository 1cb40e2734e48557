package repository

import (
	"context"

	"ridehail/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByRideID retrieves the payment for a ride.
	// Returns nil if the ride has no payment.
	GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error)

	// GetHistoryByPassenger retrieves payments for rides the passenger took,
	// newest first.
	GetHistoryByPassenger(ctx context.Context, passengerID string) ([]*domain.Payment, error)

	// UpdateStatus updates the status of a payment, and the processor
	// reference when one is supplied.
	UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus, processorRef string) error
}
