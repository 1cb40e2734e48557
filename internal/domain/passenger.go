package domain

import "time"

// Passenger represents a rider in the system.
//
// WalletBalance is a ledger: it is mutated only by ride settlement and by
// the explicit wallet top-up operation, never by other code paths.
type Passenger struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	WalletBalance float64
	Rating        float64
	PreferredPay  PaymentType
	CreatedAt     time.Time
}
