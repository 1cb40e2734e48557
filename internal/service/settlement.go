package service

import (
	"context"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/events"
	"ridehail/internal/repository"
)

// SettlementResult reports the outcome of settling a ride's payment.
// Applied is false when settlement could not move the money; the ride's
// COMPLETED status is unaffected either way.
type SettlementResult struct {
	Applied bool
	Reason  string
	Payment *domain.Payment
}

// SettlementCoordinator moves fare value from the passenger (wallet or
// external gateway) to the driver's earnings when a ride completes. The
// wallet debit and the earnings credit commit as one atomic unit; a debit
// without its credit must never be observable.
type SettlementCoordinator struct {
	uow         repository.UnitOfWork
	paymentRepo repository.PaymentRepository
	gateway     CardGateway
	sink        events.Sink
}

// NewSettlementCoordinator creates a new SettlementCoordinator.
func NewSettlementCoordinator(
	uow repository.UnitOfWork,
	paymentRepo repository.PaymentRepository,
	gateway CardGateway,
	sink events.Sink,
) *SettlementCoordinator {
	return &SettlementCoordinator{
		uow:         uow,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		sink:        sink,
	}
}

// Settle settles the payment of a completed ride. It is idempotent: a
// payment that already left PENDING/FAILED is reported as already settled
// rather than charged again.
func (c *SettlementCoordinator) Settle(ctx context.Context, ride *domain.Ride) (*SettlementResult, error) {
	payment, err := c.paymentRepo.GetByRideID(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, repository.ErrNotFound
	}

	if payment.Status == domain.PaymentStatusCompleted || payment.Status == domain.PaymentStatusRefunded {
		return &SettlementResult{Applied: false, Reason: "payment already settled", Payment: payment}, nil
	}

	fare := ride.Fare
	processor := ProcessorFor(payment.Type, c.gateway)

	switch payment.Type {
	case domain.PaymentTypeWallet:
		// The processor marks the payment completed; the guarded debit
		// inside the transaction decides whether that sticks.
		processor.Process(ctx, payment, ride)

		err := c.uow.Atomically(ctx, func(tx repository.RepositorySet) error {
			if err := tx.Passengers.DebitWallet(ctx, ride.PassengerID, fare); err != nil {
				return err
			}
			if err := tx.Drivers.CreditEarnings(ctx, ride.DriverID, fare); err != nil {
				return err
			}
			return tx.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted, "")
		})
		if err != nil {
			payment.Status = domain.PaymentStatusPending
			if errors.Is(err, repository.ErrInsufficientBalance) {
				c.sink.Publish(ctx, events.PaymentFailed, ride)
				return &SettlementResult{
					Applied: false,
					Reason:  "insufficient wallet balance",
					Payment: payment,
				}, ErrInsufficientFunds
			}
			return nil, err
		}

	case domain.PaymentTypeCreditCard:
		// Gateway collects the fare externally; only the earnings credit
		// touches local ledgers, and only after the charge succeeded.
		if !processor.Process(ctx, payment, ride) {
			if err := c.paymentRepo.UpdateStatus(ctx, payment.ID, domain.PaymentStatusFailed, ""); err != nil {
				return nil, err
			}
			c.sink.Publish(ctx, events.PaymentFailed, ride)
			return &SettlementResult{
				Applied: false,
				Reason:  "card gateway declined",
				Payment: payment,
			}, ErrPaymentFailed
		}

		err := c.uow.Atomically(ctx, func(tx repository.RepositorySet) error {
			if err := tx.Drivers.CreditEarnings(ctx, ride.DriverID, fare); err != nil {
				return err
			}
			return tx.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted, payment.ProcessorRef)
		})
		if err != nil {
			return nil, err
		}

	default: // cash
		processor.Process(ctx, payment, ride)

		err := c.uow.Atomically(ctx, func(tx repository.RepositorySet) error {
			if err := tx.Drivers.CreditEarnings(ctx, ride.DriverID, fare); err != nil {
				return err
			}
			return tx.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusCompleted, "")
		})
		if err != nil {
			return nil, err
		}
	}

	c.sink.Publish(ctx, events.PaymentCompleted, ride)

	return &SettlementResult{Applied: true, Payment: payment}, nil
}
