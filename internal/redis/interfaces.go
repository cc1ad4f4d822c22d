package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed redemption locking.
type LockStoreInterface interface {
	AcquireRedemptionLock(ctx context.Context, customerID, couponCode string, ttl time.Duration) (bool, error)
	ReleaseRedemptionLock(ctx context.Context, customerID, couponCode string) error
}

// Ensure concrete types implement interfaces.
var _ LockStoreInterface = (*LockStore)(nil)
