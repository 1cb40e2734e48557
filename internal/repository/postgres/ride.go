package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, passenger_id, driver_id,
	pickup_lat, pickup_lng, pickup_address, pickup_postcode,
	dropoff_lat, dropoff_lng, dropoff_address, dropoff_postcode,
	status, category, fare, distance_km, rating, surge_multiplier,
	payment_method, requested_at, pickup_time, dropoff_time,
	cancelled_at, cancel_reason`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		nullString(ride.DriverID),
		ride.Pickup.Latitude,
		ride.Pickup.Longitude,
		ride.Pickup.Address,
		ride.Pickup.Postcode,
		ride.Dropoff.Latitude,
		ride.Dropoff.Longitude,
		ride.Dropoff.Address,
		ride.Dropoff.Postcode,
		ride.Status,
		ride.Category,
		ride.Fare,
		ride.DistanceKm,
		nullInt(ride.Rating),
		ride.SurgeMultiplier,
		ride.PaymentMethod,
		ride.RequestedAt,
		nullTime(ride.PickupTime),
		nullTime(ride.DropoffTime),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetActiveByPassenger retrieves the passenger's in-flight ride, or nil.
func (r *RideRepository) GetActiveByPassenger(ctx context.Context, passengerID string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE passenger_id = $1 AND status IN ('REQUESTED', 'ACCEPTED', 'PICKED_UP')
		ORDER BY requested_at DESC LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, passengerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ride, nil
}

// GetByStatus retrieves rides in the given status, newest first.
func (r *RideRepository) GetByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status = $1 ORDER BY requested_at DESC LIMIT 100
	`
	return r.queryRides(ctx, query, status)
}

// GetHistoryByPassenger retrieves the passenger's non-cancelled rides.
func (r *RideRepository) GetHistoryByPassenger(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE passenger_id = $1 AND status <> 'CANCELLED'
		ORDER BY requested_at DESC LIMIT 100
	`
	return r.queryRides(ctx, query, passengerID)
}

// GetHistoryByDriver retrieves the driver's non-cancelled rides.
func (r *RideRepository) GetHistoryByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1 AND status <> 'CANCELLED'
		ORDER BY requested_at DESC LIMIT 100
	`
	return r.queryRides(ctx, query, driverID)
}

// CompareAndTransition writes the mutable ride fields guarded on the
// expected prior status. Zero rows affected means either the ride is gone or
// a concurrent operation moved the status first; the follow-up read decides
// which.
func (r *RideRepository) CompareAndTransition(ctx context.Context, ride *domain.Ride, from domain.RideStatus) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, rating = $3,
		    pickup_time = $4, dropoff_time = $5,
		    cancelled_at = $6, cancel_reason = $7
		WHERE id = $8 AND status = $9
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		ride.Status,
		nullInt(ride.Rating),
		nullTime(ride.PickupTime),
		nullTime(ride.DropoffTime),
		nullTime(ride.CancelledAt),
		nullString(ride.CancelReason),
		ride.ID,
		from,
	)
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
			`SELECT EXISTS(SELECT 1 FROM rides WHERE id = $1)`, ride.ID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrStatusConflict
	}

	return nil
}

// SetRating writes the rating guarded on completion and on no prior rating.
// The guard and the write are one statement, so two concurrent ratings can
// never both land.
func (r *RideRepository) SetRating(ctx context.Context, id string, rating int) error {
	query := `
		UPDATE rides SET rating = $1
		WHERE id = $2 AND status = 'COMPLETED' AND rating IS NULL
	`

	result, err := r.q.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var existing sql.NullInt64
		err := r.q.QueryRowContext(ctx,
			`SELECT rating FROM rides WHERE id = $1`, id,
		).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		if existing.Valid {
			return repository.ErrAlreadyRated
		}
		return repository.ErrStatusConflict
	}

	return nil
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID, cancelReason sql.NullString
	var rating sql.NullInt64
	var pickupTime, dropoffTime, cancelledAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&ride.Pickup.Latitude,
		&ride.Pickup.Longitude,
		&ride.Pickup.Address,
		&ride.Pickup.Postcode,
		&ride.Dropoff.Latitude,
		&ride.Dropoff.Longitude,
		&ride.Dropoff.Address,
		&ride.Dropoff.Postcode,
		&ride.Status,
		&ride.Category,
		&ride.Fare,
		&ride.DistanceKm,
		&rating,
		&ride.SurgeMultiplier,
		&ride.PaymentMethod,
		&ride.RequestedAt,
		&pickupTime,
		&dropoffTime,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	if rating.Valid {
		ride.Rating = int(rating.Int64)
	}
	if pickupTime.Valid {
		ride.PickupTime = pickupTime.Time
	}
	if dropoffTime.Valid {
		ride.DropoffTime = dropoffTime.Time
	}
	if cancelledAt.Valid {
		ride.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		ride.CancelReason = cancelReason.String
	}

	return &ride, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
