package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireRedemptionLock attempts to acquire the lock serializing redemptions
// of one coupon by one customer. Returns true if the lock was acquired,
// false if already held.
func (s *LockStore) AcquireRedemptionLock(ctx context.Context, customerID, couponCode string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:redemption:%s:%s", customerID, couponCode)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRedemptionLock releases the redemption lock for the given customer
// and coupon.
func (s *LockStore) ReleaseRedemptionLock(ctx context.Context, customerID, couponCode string) error {
	key := fmt.Sprintf("lock:redemption:%s:%s", customerID, couponCode)

	return s.client.Del(ctx, key).Err()
}
