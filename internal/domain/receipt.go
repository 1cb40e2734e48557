package domain

import "time"

// Receipt represents the fare breakdown for a completed ride.
type Receipt struct {
	ID              string
	RideID          string
	DriverID        string
	PassengerID     string
	Pickup          Location
	Dropoff         Location
	BaseFare        float64
	DistanceCharge  float64
	SurgeMultiplier float64
	SurgeAmount     float64
	TotalFare       float64
	DistanceKm      float64
	Duration        time.Duration
	PaymentMethod   PaymentType
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
}
