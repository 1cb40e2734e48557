package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// CardGateway is the external card-processing collaborator. Amounts travel
// in minor units (cents).
type CardGateway interface {
	Charge(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (referenceID string, err error)
}

// StubCardGateway is a gateway stand-in that approves every charge. Used in
// development and tests when no real gateway is configured.
type StubCardGateway struct{}

// NewStubCardGateway creates a new StubCardGateway.
func NewStubCardGateway() *StubCardGateway {
	return &StubCardGateway{}
}

// Charge approves the charge and returns a generated reference id.
func (g *StubCardGateway) Charge(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (string, error) {
	return "ch_" + uuid.New().String(), nil
}

// PaymentProcessor executes payment processing for one payment type. Process
// mutates the payment's status in place and reports success; ordinary
// processing failure is a false return plus status FAILED, never an error.
// Persisting the mutated payment is the caller's job.
type PaymentProcessor interface {
	Process(ctx context.Context, payment *domain.Payment, ride *domain.Ride) bool
}

// CardProcessor charges the external card gateway.
type CardProcessor struct {
	gateway CardGateway
}

// Process charges the gateway for the payment amount. Gateway errors mark
// the payment FAILED.
func (p *CardProcessor) Process(ctx context.Context, payment *domain.Payment, ride *domain.Ride) bool {
	ref, err := p.gateway.Charge(ctx, minorUnits(payment.Amount), "usd", map[string]string{
		"ride_id":      ride.ID,
		"passenger_id": ride.PassengerID,
	})
	if err != nil {
		payment.Status = domain.PaymentStatusFailed
		return false
	}

	payment.ProcessorRef = ref
	payment.Status = domain.PaymentStatusCompleted
	return true
}

// WalletProcessor marks wallet payments completed. It does not touch
// balances: the sufficiency check and the debit live in the settlement
// transaction.
type WalletProcessor struct{}

func (p *WalletProcessor) Process(ctx context.Context, payment *domain.Payment, ride *domain.Ride) bool {
	payment.Status = domain.PaymentStatusCompleted
	return true
}

// CashProcessor marks cash payments completed; the driver collects the cash
// out of band.
type CashProcessor struct{}

func (p *CashProcessor) Process(ctx context.Context, payment *domain.Payment, ride *domain.Ride) bool {
	payment.Status = domain.PaymentStatusCompleted
	return true
}

// ProcessorFor returns the processor for a payment type. Dispatch is closed
// over the three known types; unknown tags fall back to cash semantics.
func ProcessorFor(paymentType domain.PaymentType, gateway CardGateway) PaymentProcessor {
	switch paymentType {
	case domain.PaymentTypeCreditCard:
		return &CardProcessor{gateway: gateway}
	case domain.PaymentTypeWallet:
		return &WalletProcessor{}
	default:
		return &CashProcessor{}
	}
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// PaymentService exposes payment queries and the standalone settlement
// retry operation.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	rideRepo    repository.RideRepository
	settlement  *SettlementCoordinator
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	rideRepo repository.RideRepository,
	settlement *SettlementCoordinator,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		rideRepo:    rideRepo,
		settlement:  settlement,
	}
}

// ProcessPayment retries settlement of a ride's payment. The ride must be
// completed and the payment must still be PENDING or FAILED; a payment that
// already completed is returned as-is rather than charged twice.
func (s *PaymentService) ProcessPayment(ctx context.Context, rideID, passengerID string) (*SettlementResult, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.PassengerID != passengerID {
		return nil, ErrNotRidePassenger
	}

	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}

	return s.settlement.Settle(ctx, ride)
}

// GetPayment retrieves a payment by ID.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	return s.paymentRepo.GetByID(ctx, paymentID)
}

// GetPaymentForRide retrieves the payment attached to a ride.
func (s *PaymentService) GetPaymentForRide(ctx context.Context, rideID string) (*domain.Payment, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	payment, err := s.paymentRepo.GetByRideID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, repository.ErrNotFound
	}
	return payment, nil
}

// GetHistory retrieves the passenger's payments, newest first.
func (s *PaymentService) GetHistory(ctx context.Context, passengerID string) ([]*domain.Payment, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	return s.paymentRepo.GetHistoryByPassenger(ctx, passengerID)
}

// RefundPayment moves a COMPLETED payment to REFUNDED. The money movement
// itself is an out-of-band concern; only the status transition is enforced
// here.
func (s *PaymentService) RefundPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status != domain.PaymentStatusCompleted {
		return nil, ErrPaymentNotRefundable
	}

	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusRefunded, ""); err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatusRefunded
	payment.UpdatedAt = time.Now()
	return payment, nil
}
