package events

import (
	"context"

	"ridehail/internal/domain"
)

// Type identifies a ride lifecycle event.
type Type string

const (
	RideRequested    Type = "RIDE_REQUESTED"
	RideAccepted     Type = "RIDE_ACCEPTED"
	RideStarted      Type = "RIDE_STARTED"
	RideCompleted    Type = "RIDE_COMPLETED"
	RideCancelled    Type = "RIDE_CANCELLED"
	PaymentCompleted Type = "PAYMENT_COMPLETED"
	PaymentFailed    Type = "PAYMENT_FAILED"
	ReceiptReady     Type = "RECEIPT_READY"
)

// Sink receives lifecycle events for notification fan-out. Publishing is
// fire-and-forget: delivery failures are the sink's problem, never the
// caller's.
type Sink interface {
	Publish(ctx context.Context, eventType Type, ride *domain.Ride)
}
