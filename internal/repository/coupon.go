package repository

import (
	"context"
	"time"

	"promo/internal/domain"
)

// CouponRepository defines the persistence operations for coupon definitions.
type CouponRepository interface {
	// Create persists a new coupon.
	// Returns ErrDuplicateCode if the code is already taken.
	Create(ctx context.Context, coupon *domain.Coupon) error

	// GetByCode retrieves a coupon by its normalized code.
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)

	// ListActive retrieves all coupons that are active and whose validity
	// window contains the given instant.
	ListActive(ctx context.Context, at time.Time) ([]*domain.Coupon, error)

	// SetActive enables or disables a coupon (soft delete).
	SetActive(ctx context.Context, code string, active bool) error
}
