package repository

import "context"

// RepositorySet bundles transaction-scoped repositories handed to an atomic
// unit of work.
type RepositorySet struct {
	Rides      RideRepository
	Payments   PaymentRepository
	Passengers PassengerRepository
	Drivers    DriverRepository
}

// UnitOfWork executes a function atomically against the store: every write
// made through the provided RepositorySet commits together or not at all.
// Settlement relies on this to move money between two ledgers without a
// partially applied state ever being observable.
type UnitOfWork interface {
	Atomically(ctx context.Context, fn func(tx RepositorySet) error) error
}
