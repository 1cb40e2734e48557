package events

import (
	"context"
	"fmt"
	"log"

	"ridehail/internal/domain"
)

// LogSink writes lifecycle events to the process log. It is the default
// sink for local development and the fallback when no broker is configured.
type LogSink struct{}

// NewLogSink creates a new LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Publish logs the event with a short human-readable summary.
func (s *LogSink) Publish(ctx context.Context, eventType Type, ride *domain.Ride) {
	log.Printf("[EVENT] type=%s ride=%s status=%s %s",
		eventType, ride.ID, ride.Status, summarize(eventType, ride))
}

func summarize(eventType Type, ride *domain.Ride) string {
	switch eventType {
	case RideRequested:
		return fmt.Sprintf("passenger=%s fare=%.2f surge=%.2fx", ride.PassengerID, ride.Fare, ride.SurgeMultiplier)
	case RideAccepted, RideStarted:
		return fmt.Sprintf("driver=%s", ride.DriverID)
	case RideCompleted:
		return fmt.Sprintf("driver=%s fare=%.2f method=%s", ride.DriverID, ride.Fare, ride.PaymentMethod)
	case RideCancelled:
		return fmt.Sprintf("reason=%q", ride.CancelReason)
	default:
		return ""
	}
}

var _ Sink = (*LogSink)(nil)
