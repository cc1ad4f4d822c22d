package repository

import (
	"context"

	"promo/internal/domain"
)

// UsageRepository defines read access to the append-only redemption ledger.
type UsageRepository interface {
	// CountByCustomerAndCoupon returns how many times the customer has
	// redeemed the coupon. This is the source of truth for per-user limits.
	CountByCustomerAndCoupon(ctx context.Context, customerID, couponID string) (int, error)

	// ListByCustomer retrieves the customer's redemption history, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.UsageRecord, error)
}

// RedemptionStore commits a redemption: the conditional increment of the
// coupon's usage counter and the ledger append happen in one atomic storage
// operation.
type RedemptionStore interface {
	// CommitRedemption atomically increments the coupon's usage count,
	// re-checking the total usage limit as part of the same operation, and
	// appends the usage record. Returns ErrLimitReached when the limit was
	// exhausted concurrently; in that case nothing is persisted.
	CommitRedemption(ctx context.Context, couponID string, record *domain.UsageRecord) error
}
