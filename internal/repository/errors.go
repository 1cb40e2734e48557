package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrStatusConflict is returned when a guarded status transition finds
	// that the row no longer holds the expected prior status.
	ErrStatusConflict = errors.New("status changed by a concurrent operation")

	// ErrInsufficientBalance is returned when a guarded wallet debit finds
	// the balance short of the requested amount.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrAlreadyRated is returned when a guarded rating write finds the
	// ride already carries a rating.
	ErrAlreadyRated = errors.New("ride already carries a rating")
)
