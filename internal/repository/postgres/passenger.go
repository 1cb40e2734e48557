package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// NewPassengerRepositoryWithTx creates a passenger repository using a transaction.
func NewPassengerRepositoryWithTx(tx *sql.Tx) *PassengerRepository {
	return &PassengerRepository{q: tx}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `
		INSERT INTO passengers (id, name, email, phone, wallet_balance, rating, preferred_pay, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		passenger.ID,
		passenger.Name,
		passenger.Email,
		passenger.Phone,
		passenger.WalletBalance,
		passenger.Rating,
		passenger.PreferredPay,
		passenger.CreatedAt,
	)

	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `
		SELECT id, name, email, phone, wallet_balance, rating, preferred_pay, created_at
		FROM passengers WHERE id = $1
	`

	var passenger domain.Passenger
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&passenger.ID,
		&passenger.Name,
		&passenger.Email,
		&passenger.Phone,
		&passenger.WalletBalance,
		&passenger.Rating,
		&passenger.PreferredPay,
		&passenger.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &passenger, nil
}

// CreditWallet adds amount to the passenger's wallet balance.
func (r *PassengerRepository) CreditWallet(ctx context.Context, id string, amount float64) error {
	query := `UPDATE passengers SET wallet_balance = wallet_balance + $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, amount, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DebitWallet subtracts amount from the wallet, guarded on sufficiency.
// The balance check and the write are one statement, so two concurrent
// debits can never both succeed against a balance that covers only one.
func (r *PassengerRepository) DebitWallet(ctx context.Context, id string, amount float64) error {
	query := `
		UPDATE passengers SET wallet_balance = wallet_balance - $1
		WHERE id = $2 AND wallet_balance >= $1
	`

	result, err := r.q.ExecContext(ctx, query, amount, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var exists bool
		if err := r.q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM passengers WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrInsufficientBalance
	}

	return nil
}
