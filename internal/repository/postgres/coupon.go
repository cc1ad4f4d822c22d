package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"promo/internal/domain"
	"promo/internal/repository"
)

// CouponRepository is a PostgreSQL implementation of repository.CouponRepository.
type CouponRepository struct {
	q Querier
}

// NewCouponRepository creates a new PostgreSQL coupon repository.
func NewCouponRepository(db *sql.DB) *CouponRepository {
	return &CouponRepository{q: db}
}

// NewCouponRepositoryWithTx creates a coupon repository using a transaction.
func NewCouponRepositoryWithTx(tx *sql.Tx) *CouponRepository {
	return &CouponRepository{q: tx}
}

const couponColumns = `
	id, code, description, discount_type, discount_value, max_discount_amount,
	min_fare_amount, applicable_vehicles, ride_rule_kind, ride_number,
	specific_ride_numbers, max_usage_per_user, total_usage_limit,
	current_usage_count, valid_from, valid_until, is_active,
	eligible_user_types, min_rides_completed, max_rides_completed,
	created_at, updated_at
`

// Create persists a new coupon.
func (r *CouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	rideNumber, specificRides := encodeRideRule(coupon.RideRule)

	userTypes := make([]string, len(coupon.EligibleUserTypes))
	for i, ut := range coupon.EligibleUserTypes {
		userTypes[i] = string(ut)
	}

	_, err := r.q.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MaxDiscountAmount,
		coupon.MinFareAmount,
		pq.Array(coupon.ApplicableVehicles),
		coupon.RideRule.Kind(),
		rideNumber,
		specificRides,
		coupon.MaxUsagePerUser,
		coupon.TotalUsageLimit,
		coupon.CurrentUsageCount,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.IsActive,
		pq.Array(userTypes),
		coupon.MinRidesCompleted,
		coupon.MaxRidesCompleted,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicateCode
		}
		return err
	}

	return nil
}

// GetByCode retrieves a coupon by its normalized code.
func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := scanCoupon(r.q.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return coupon, nil
}

// ListActive retrieves all active coupons whose validity window contains at.
func (r *CouponRepository) ListActive(ctx context.Context, at time.Time) ([]*domain.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE is_active = TRUE AND valid_from <= $1 AND valid_until >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}

	return coupons, rows.Err()
}

// SetActive enables or disables a coupon. Disabling is the soft-delete path:
// ledger entries keep referencing the row.
func (r *CouponRepository) SetActive(ctx context.Context, code string, active bool) error {
	query := `UPDATE coupons SET is_active = $1, updated_at = NOW() WHERE code = $2`

	result, err := r.q.ExecContext(ctx, query, active, code)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCoupon maps one coupons row onto the domain entity, reconstructing the
// ride-rule variant from its persisted columns.
func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var (
		coupon        domain.Coupon
		ruleKind      string
		rideNumber    sql.NullInt64
		specificRides pq.Int64Array
		vehicles      pq.StringArray
		userTypes     pq.StringArray
	)

	err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Description,
		&coupon.DiscountType,
		&coupon.DiscountValue,
		&coupon.MaxDiscountAmount,
		&coupon.MinFareAmount,
		&vehicles,
		&ruleKind,
		&rideNumber,
		&specificRides,
		&coupon.MaxUsagePerUser,
		&coupon.TotalUsageLimit,
		&coupon.CurrentUsageCount,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.IsActive,
		&userTypes,
		&coupon.MinRidesCompleted,
		&coupon.MaxRidesCompleted,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	coupon.ApplicableVehicles = vehicles

	coupon.EligibleUserTypes = make([]domain.UserType, len(userTypes))
	for i, ut := range userTypes {
		coupon.EligibleUserTypes[i] = domain.UserType(ut)
	}

	numbers := make([]int, len(specificRides))
	for i, n := range specificRides {
		numbers[i] = int(n)
	}

	rule, err := domain.NewRideRule(domain.RideRuleKind(ruleKind), int(rideNumber.Int64), numbers)
	if err != nil {
		return nil, err
	}
	coupon.RideRule = rule

	return &coupon, nil
}

// encodeRideRule flattens the ride-rule variant into its persisted columns.
func encodeRideRule(rule domain.RideRule) (sql.NullInt64, pq.Int64Array) {
	var rideNumber sql.NullInt64
	var specific pq.Int64Array

	switch r := rule.(type) {
	case domain.NthRide:
		rideNumber = sql.NullInt64{Int64: int64(r.N), Valid: true}
	case domain.EveryNthRide:
		rideNumber = sql.NullInt64{Int64: int64(r.N), Valid: true}
	case domain.SpecificRides:
		specific = make(pq.Int64Array, len(r.Numbers))
		for i, n := range r.Numbers {
			specific[i] = int64(n)
		}
	}

	return rideNumber, specific
}

// Ensure CouponRepository implements repository.CouponRepository.
var _ repository.CouponRepository = (*CouponRepository)(nil)
