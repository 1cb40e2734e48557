package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"ridehail/internal/domain"
)

const (
	rideExchange   = "ride.events"
	publishTimeout = 2 * time.Second
)

// AMQPSink publishes lifecycle events to a RabbitMQ topic exchange so that
// downstream notification services can fan them out. Publish failures are
// logged and swallowed: the ride operation has already committed.
type AMQPSink struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// rideEvent is the wire payload for a lifecycle event.
type rideEvent struct {
	EventType   string    `json:"event_type"`
	RideID      string    `json:"ride_id"`
	PassengerID string    `json:"passenger_id"`
	DriverID    string    `json:"driver_id,omitempty"`
	Status      string    `json:"status"`
	Fare        float64   `json:"fare"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewAMQPSink connects to RabbitMQ and declares the ride events exchange.
func NewAMQPSink(url string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(rideExchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPSink{conn: conn, channel: channel}, nil
}

// Publish sends the event to the ride events exchange.
func (s *AMQPSink) Publish(ctx context.Context, eventType Type, ride *domain.Ride) {
	payload, err := json.Marshal(rideEvent{
		EventType:   string(eventType),
		RideID:      ride.ID,
		PassengerID: ride.PassengerID,
		DriverID:    ride.DriverID,
		Status:      string(ride.Status),
		Fare:        ride.Fare,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		log.Printf("event marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx, rideExchange, routingKey(eventType), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
	if err != nil {
		log.Printf("event publish failed: type=%s ride=%s err=%v", eventType, ride.ID, err)
	}
}

// Close releases the channel and connection.
func (s *AMQPSink) Close() error {
	if err := s.channel.Close(); err != nil {
		return err
	}
	return s.conn.Close()
}

func routingKey(eventType Type) string {
	switch eventType {
	case RideRequested:
		return "ride.requested"
	case RideAccepted:
		return "ride.accepted"
	case RideStarted:
		return "ride.started"
	case RideCompleted:
		return "ride.completed"
	case RideCancelled:
		return "ride.cancelled"
	case PaymentCompleted, PaymentFailed:
		return "ride.payment"
	case ReceiptReady:
		return "ride.receipt"
	default:
		return "ride.event"
	}
}

var _ Sink = (*AMQPSink)(nil)
