package domain

import "time"

// Driver represents a driver in the system.
//
// Earnings is a ledger: it is mutated only by ride settlement.
type Driver struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	LicenseNumber string
	VehicleMake   string
	VehicleModel  string
	VehicleYear   int
	LicensePlate  string
	Available     bool
	Earnings      float64
	Rating        float64
	CreatedAt     time.Time
}
