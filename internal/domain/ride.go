package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested RideStatus = "REQUESTED"
	RideStatusAccepted  RideStatus = "ACCEPTED"
	RideStatusPickedUp  RideStatus = "PICKED_UP"
	RideStatusCompleted RideStatus = "COMPLETED"
	RideStatusCancelled RideStatus = "CANCELLED"
)

// Terminal reports whether no further transition is allowed out of the status.
func (s RideStatus) Terminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RideCategory represents the service tier of a ride.
type RideCategory string

const (
	RideCategoryStandard RideCategory = "STANDARD"
	RideCategoryPool     RideCategory = "POOL"
	RideCategoryLuxury   RideCategory = "LUXURY"
)

// Location is a resolved pickup or dropoff point.
type Location struct {
	Latitude  float64
	Longitude float64
	Address   string
	Postcode  string
}

// Ride represents a ride in the system.
//
// Fare, distance, category, surge multiplier and payment method are fixed at
// creation time. DriverID stays empty until the ride is accepted. PickupTime
// and DropoffTime are set exactly once, by the PICKED_UP and COMPLETED
// transitions respectively.
type Ride struct {
	ID              string
	PassengerID     string
	DriverID        string
	Pickup          Location
	Dropoff         Location
	Status          RideStatus
	Category        RideCategory
	Fare            float64
	DistanceKm      float64
	Rating          int     // 0 = not rated yet
	SurgeMultiplier float64 // 1.0 = no surge
	PaymentMethod   PaymentType
	RequestedAt     time.Time
	PickupTime      time.Time
	DropoffTime     time.Time
	CancelledAt     time.Time
	CancelReason    string
}
