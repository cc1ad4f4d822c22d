package domain

import "time"

// UsageRecord is one entry in the append-only redemption ledger. Records are
// created exactly once per successful redemption and never mutated.
type UsageRecord struct {
	ID             string
	CouponID       string
	CouponCode     string // denormalized for reporting
	CustomerID     string
	TripID         string
	OriginalFare   float64
	DiscountAmount float64
	FinalFare      float64
	VehicleType    string
	CreatedAt      time.Time
}

// RideHistory is a rider's completed-ride count at evaluation time. It is
// computed fresh on every evaluation and never cached across requests, since
// it changes the set of eligible coupons.
type RideHistory struct {
	CompletedRides int
}

// NextRideNumber is the 1-based ordinal of the ride currently being taken.
func (h RideHistory) NextRideNumber() int {
	return h.CompletedRides + 1
}
