package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentType represents how a ride is paid for.
type PaymentType string

const (
	PaymentTypeCreditCard PaymentType = "CREDIT_CARD"
	PaymentTypeWallet     PaymentType = "WALLET"
	PaymentTypeCash       PaymentType = "CASH"
)

// Payment represents the payment for a ride. Each ride has at most one
// payment; its amount always equals the ride fare.
type Payment struct {
	ID           string
	RideID       string
	Amount       float64
	Type         PaymentType
	Status       PaymentStatus
	ProcessorRef string // reference id from the external card gateway
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
