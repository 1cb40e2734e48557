package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// PassengerService handles passenger registration and wallet operations.
type PassengerService struct {
	passengerRepo repository.PassengerRepository
}

// NewPassengerService creates a new PassengerService.
func NewPassengerService(passengerRepo repository.PassengerRepository) *PassengerService {
	return &PassengerService{passengerRepo: passengerRepo}
}

// RegisterPassengerRequest contains the parameters for registering a
// passenger.
type RegisterPassengerRequest struct {
	Name         string
	Email        string
	Phone        string
	PreferredPay string
}

// Register creates a new passenger with an empty wallet.
func (s *PassengerService) Register(ctx context.Context, req RegisterPassengerRequest) (*domain.Passenger, error) {
	if req.Name == "" || req.Email == "" {
		return nil, ErrInvalidPassengerID
	}

	preferred, err := ValidatePaymentMethod(req.PreferredPay)
	if err != nil {
		return nil, err
	}

	passenger := &domain.Passenger{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PreferredPay: preferred,
		CreatedAt:    time.Now(),
	}

	if err := s.passengerRepo.Create(ctx, passenger); err != nil {
		return nil, err
	}

	return passenger, nil
}

// Get retrieves a passenger by ID.
func (s *PassengerService) Get(ctx context.Context, passengerID string) (*domain.Passenger, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.passengerRepo.GetByID(ctx, passengerID)
}

// TopUpWallet credits the passenger's wallet. This is the only path into
// the wallet ledger besides ride settlement.
func (s *PassengerService) TopUpWallet(ctx context.Context, passengerID string, amount float64) (*domain.Passenger, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.passengerRepo.CreditWallet(ctx, passengerID, amount); err != nil {
		return nil, err
	}

	return s.passengerRepo.GetByID(ctx, passengerID)
}
