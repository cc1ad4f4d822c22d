package repository

import "context"

// RideHistoryRepository exposes the rider's trip history owned by the wider
// platform. Counts are read fresh on every evaluation; they are never cached.
type RideHistoryRepository interface {
	// CountCompletedRides returns the number of trips the customer has
	// completed.
	CountCompletedRides(ctx context.Context, customerID string) (int, error)
}
