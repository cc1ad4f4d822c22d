package postgres

import (
	"context"
	"database/sql"

	"promo/internal/domain"
	"promo/internal/repository"
)

// UsageRepository is a PostgreSQL implementation of repository.UsageRepository.
type UsageRepository struct {
	q Querier
}

// NewUsageRepository creates a new PostgreSQL usage repository.
func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{q: db}
}

// NewUsageRepositoryWithTx creates a usage repository using a transaction.
func NewUsageRepositoryWithTx(tx *sql.Tx) *UsageRepository {
	return &UsageRepository{q: tx}
}

// Append inserts a new ledger entry. Records are never updated or deleted.
func (r *UsageRepository) Append(ctx context.Context, record *domain.UsageRecord) error {
	query := `
		INSERT INTO usage_records (id, coupon_id, coupon_code, customer_id, trip_id, original_fare, discount_amount, final_fare, vehicle_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.CouponID,
		record.CouponCode,
		record.CustomerID,
		record.TripID,
		record.OriginalFare,
		record.DiscountAmount,
		record.FinalFare,
		record.VehicleType,
		record.CreatedAt,
	)

	return err
}

// CountByCustomerAndCoupon counts the customer's ledger entries for a coupon.
func (r *UsageRepository) CountByCustomerAndCoupon(ctx context.Context, customerID, couponID string) (int, error) {
	query := `SELECT COUNT(*) FROM usage_records WHERE customer_id = $1 AND coupon_id = $2`

	var count int
	if err := r.q.QueryRowContext(ctx, query, customerID, couponID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// ListByCustomer retrieves the customer's redemption history, newest first.
func (r *UsageRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.UsageRecord, error) {
	query := `
		SELECT id, coupon_id, coupon_code, customer_id, trip_id, original_fare, discount_amount, final_fare, vehicle_type, created_at
		FROM usage_records
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.UsageRecord
	for rows.Next() {
		var record domain.UsageRecord
		if err := rows.Scan(
			&record.ID,
			&record.CouponID,
			&record.CouponCode,
			&record.CustomerID,
			&record.TripID,
			&record.OriginalFare,
			&record.DiscountAmount,
			&record.FinalFare,
			&record.VehicleType,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Ensure UsageRepository implements repository.UsageRepository.
var _ repository.UsageRepository = (*UsageRepository)(nil)
