package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridehail/internal/domain"
	"ridehail/internal/events"
)

// ReceiptService generates fare breakdowns for completed rides. The
// breakdown is reconstructed from the fixed fare inputs stored on the ride,
// never recomputed from live data, so the receipt always matches what was
// charged.
type ReceiptService struct {
	sink events.Sink
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(sink events.Sink) *ReceiptService {
	return &ReceiptService{sink: sink}
}

// Generate builds a receipt for a completed ride. payment may be nil when
// settlement has not concluded; the receipt then reports PENDING.
func (s *ReceiptService) Generate(ctx context.Context, ride *domain.Ride, payment *domain.Payment) (*domain.Receipt, error) {
	if ride == nil {
		return nil, ErrInvalidRideID
	}
	if ride.Status != domain.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}

	surgeMultiplier := ride.SurgeMultiplier
	if surgeMultiplier < 1.0 {
		surgeMultiplier = 1.0
	}

	distanceCharge := ride.DistanceKm * ratePerKm(ride.Category)
	preSurge := BaseFare + distanceCharge
	surgeAmount := preSurge * (surgeMultiplier - 1.0)

	var duration time.Duration
	if !ride.PickupTime.IsZero() && !ride.DropoffTime.IsZero() {
		duration = ride.DropoffTime.Sub(ride.PickupTime)
	}

	paymentStatus := domain.PaymentStatusPending
	if payment != nil {
		paymentStatus = payment.Status
	}

	receipt := &domain.Receipt{
		ID:              uuid.New().String(),
		RideID:          ride.ID,
		DriverID:        ride.DriverID,
		PassengerID:     ride.PassengerID,
		Pickup:          ride.Pickup,
		Dropoff:         ride.Dropoff,
		BaseFare:        BaseFare,
		DistanceCharge:  distanceCharge,
		SurgeMultiplier: surgeMultiplier,
		SurgeAmount:     surgeAmount,
		TotalFare:       ride.Fare,
		DistanceKm:      ride.DistanceKm,
		Duration:        duration,
		PaymentMethod:   ride.PaymentMethod,
		PaymentStatus:   paymentStatus,
		CreatedAt:       time.Now(),
	}

	if s.sink != nil {
		s.sink.Publish(ctx, events.ReceiptReady, ride)
	}

	return receipt, nil
}

// FormatReceipt formats the receipt as a string (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	return `
=====================================
        RIDE RECEIPT
=====================================
Receipt ID: ` + receipt.ID + `
Ride ID: ` + receipt.RideID + `
Date: ` + receipt.CreatedAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
Pickup:      ` + receipt.Pickup.Address + ` (` + receipt.Pickup.Postcode + `)
Dropoff:     ` + receipt.Dropoff.Address + ` (` + receipt.Dropoff.Postcode + `)
Duration:    ` + formatDuration(receipt.Duration) + `
Distance:    ` + formatFloat(receipt.DistanceKm) + ` km

FARE BREAKDOWN
-------------------------------------
Base Fare:        $` + formatFloat(receipt.BaseFare) + `
Distance Charge:  $` + formatFloat(receipt.DistanceCharge) + `
Surge (` + formatFloat(receipt.SurgeMultiplier) + `x):   $` + formatFloat(receipt.SurgeAmount) + `
-------------------------------------
TOTAL:            $` + formatFloat(receipt.TotalFare) + `

PAYMENT
-------------------------------------
Method: ` + string(receipt.PaymentMethod) + `
Status: ` + string(receipt.PaymentStatus) + `

=====================================
     Thank you for riding with us!
=====================================
`
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d min", minutes)
}
