package postgres

import (
	"context"
	"database/sql"

	"promo/internal/repository"
)

// RideHistoryRepository reads the platform's trip history. The promo service
// never writes these tables; it only needs completed-ride counts.
type RideHistoryRepository struct {
	q Querier
}

// NewRideHistoryRepository creates a new PostgreSQL ride-history repository.
func NewRideHistoryRepository(db *sql.DB) *RideHistoryRepository {
	return &RideHistoryRepository{q: db}
}

// CountCompletedRides returns the number of trips the customer has completed.
func (r *RideHistoryRepository) CountCompletedRides(ctx context.Context, customerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM trips t
		JOIN rides r ON r.id = t.ride_id
		WHERE r.rider_id = $1 AND t.status = 'ENDED'
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, customerID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// Ensure RideHistoryRepository implements repository.RideHistoryRepository.
var _ repository.RideHistoryRepository = (*RideHistoryRepository)(nil)
