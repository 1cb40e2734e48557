package service

import "errors"

// Validation errors (bad input shape or range).
var (
	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidLocation is returned when an address or postcode is missing.
	ErrInvalidLocation = errors.New("invalid pickup or dropoff location")

	// ErrInvalidCategory is returned when the ride category is unknown.
	ErrInvalidCategory = errors.New("invalid ride category")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidAmount is returned when a monetary amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrActiveRideExists is returned when the passenger already has a ride
	// in flight.
	ErrActiveRideExists = errors.New("passenger already has an active ride")
)

// Conflict errors (state already moved by a racing operation).
var (
	// ErrRideAlreadyAccepted is returned to the losers of an accept race.
	ErrRideAlreadyAccepted = errors.New("ride already accepted")

	// ErrInvalidTransition is returned when the ride is not in the state
	// the operation requires.
	ErrInvalidTransition = errors.New("ride is not in a valid state for this operation")

	// ErrRideNotCompleted is returned when an operation requires a
	// completed ride.
	ErrRideNotCompleted = errors.New("ride is not completed")

	// ErrAlreadyRated is returned when a ride already carries a rating.
	ErrAlreadyRated = errors.New("ride already rated")

	// ErrPaymentNotRefundable is returned when a refund targets a payment
	// that never completed.
	ErrPaymentNotRefundable = errors.New("payment is not refundable")
)

// Authorization errors (actor lacks rights over the entity).
var (
	// ErrNotRideDriver is returned when the acting driver is not assigned
	// to the ride.
	ErrNotRideDriver = errors.New("driver is not assigned to this ride")

	// ErrNotRideParticipant is returned when the actor is neither the
	// ride's passenger nor its driver.
	ErrNotRideParticipant = errors.New("actor is not a participant of this ride")

	// ErrNotRidePassenger is returned when the actor is not the ride's
	// passenger.
	ErrNotRidePassenger = errors.New("actor is not the passenger of this ride")
)

// Settlement errors.
var (
	// ErrInsufficientFunds is returned when the wallet cannot cover the
	// fare. The ride stays COMPLETED; settlement simply did not apply.
	ErrInsufficientFunds = errors.New("insufficient wallet balance for fare")

	// ErrPaymentFailed is returned when the card gateway declines or fails.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrUpstream is returned when an external collaborator times out or
	// errors in a way that aborts the operation.
	ErrUpstream = errors.New("upstream service failure")
)
