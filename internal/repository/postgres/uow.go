package postgres

import (
	"context"
	"database/sql"

	"ridehail/internal/repository"
)

// UnitOfWork implements repository.UnitOfWork on top of *sql.DB
// transactions.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Atomically runs fn against transaction-scoped repositories. The
// transaction commits only when fn returns nil; any error rolls everything
// back.
func (u *UnitOfWork) Atomically(ctx context.Context, fn func(tx repository.RepositorySet) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	set := repository.RepositorySet{
		Rides:      NewRideRepositoryWithTx(tx),
		Payments:   NewPaymentRepositoryWithTx(tx),
		Passengers: NewPassengerRepositoryWithTx(tx),
		Drivers:    NewDriverRepositoryWithTx(tx),
	}

	if err := fn(set); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)
