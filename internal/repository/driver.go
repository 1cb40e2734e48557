package repository

import (
	"context"

	"ridehail/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// UpdateAvailability sets whether the driver is taking rides.
	UpdateAvailability(ctx context.Context, id string, available bool) error

	// CreditEarnings adds amount to the driver's earnings ledger.
	CreditEarnings(ctx context.Context, id string, amount float64) error
}
