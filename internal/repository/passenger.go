package repository

import (
	"context"

	"ridehail/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create adds a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// CreditWallet adds amount to the passenger's wallet balance.
	CreditWallet(ctx context.Context, id string, amount float64) error

	// DebitWallet subtracts amount from the passenger's wallet balance.
	// The debit is guarded: it returns ErrInsufficientBalance, without
	// changing the row, when the balance is short of amount.
	DebitWallet(ctx context.Context, id string, amount float64) error
}
