package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"promo/internal/domain"
	"promo/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK COUPON REPOSITORY
// ──────────────────────────────────────────────

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mu      sync.RWMutex
	coupons map[string]*domain.Coupon // keyed by code

	// Counters for verification
	CreateCallCount    int32
	GetByCodeCallCount int32

	// Error injection
	CreateError    error
	GetByCodeError error
}

// NewMockCouponRepository creates a new mock coupon repository.
func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{
		coupons: make(map[string]*domain.Coupon),
	}
}

// AddCoupon adds a coupon to the mock repository.
func (m *MockCouponRepository) AddCoupon(coupon *domain.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[coupon.Code] = coupon
}

func (m *MockCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[coupon.Code]; ok {
		return repository.ErrDuplicateCode
	}
	m.coupons[coupon.Code] = coupon
	return nil
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	atomic.AddInt32(&m.GetByCodeCallCount, 1)
	if m.GetByCodeError != nil {
		return nil, m.GetByCodeError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	coupon, ok := m.coupons[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *coupon
	return &copy, nil
}

func (m *MockCouponRepository) ListActive(ctx context.Context, at time.Time) ([]*domain.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Coupon
	for _, c := range m.coupons {
		if c.IsActive && !at.Before(c.ValidFrom) && !at.After(c.ValidUntil) {
			copy := *c
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockCouponRepository) SetActive(ctx context.Context, code string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coupon, ok := m.coupons[code]
	if !ok {
		return repository.ErrNotFound
	}
	coupon.IsActive = active
	return nil
}

// GetCoupon returns the stored coupon for test assertions.
func (m *MockCouponRepository) GetCoupon(code string) *domain.Coupon {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coupons[code]
}

// findByID returns the stored coupon with the given ID, or nil.
// Callers must hold the lock.
func (m *MockCouponRepository) findByID(id string) *domain.Coupon {
	for _, c := range m.coupons {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK USAGE REPOSITORY
// ──────────────────────────────────────────────

// MockUsageRepository is a mock implementation of UsageRepository.
type MockUsageRepository struct {
	mu      sync.RWMutex
	records []*domain.UsageRecord

	// Counters
	CountCallCount int32

	// Error injection
	CountError error
}

// NewMockUsageRepository creates a new mock usage repository.
func NewMockUsageRepository() *MockUsageRepository {
	return &MockUsageRepository{}
}

// AddRecord adds a ledger entry to the mock repository.
func (m *MockUsageRepository) AddRecord(record *domain.UsageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
}

func (m *MockUsageRepository) CountByCustomerAndCoupon(ctx context.Context, customerID, couponID string) (int, error) {
	atomic.AddInt32(&m.CountCallCount, 1)
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.records {
		if r.CustomerID == customerID && r.CouponID == couponID {
			count++
		}
	}
	return count, nil
}

func (m *MockUsageRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.UsageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.UsageRecord
	for _, r := range m.records {
		if r.CustomerID == customerID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountRecords returns the total number of ledger entries.
func (m *MockUsageRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// GetRecordByTripID returns the ledger entry for a trip, or nil.
func (m *MockUsageRepository) GetRecordByTripID(tripID string) *domain.UsageRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.TripID == tripID {
			return r
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK RIDE HISTORY REPOSITORY
// ──────────────────────────────────────────────

// MockRideHistoryRepository is a mock implementation of RideHistoryRepository.
type MockRideHistoryRepository struct {
	mu     sync.RWMutex
	counts map[string]int

	// Error injection
	CountError error
}

// NewMockRideHistoryRepository creates a new mock ride-history repository.
func NewMockRideHistoryRepository() *MockRideHistoryRepository {
	return &MockRideHistoryRepository{
		counts: make(map[string]int),
	}
}

// SetCompletedRides sets a customer's completed-ride count.
func (m *MockRideHistoryRepository) SetCompletedRides(customerID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[customerID] = count
}

func (m *MockRideHistoryRepository) CountCompletedRides(ctx context.Context, customerID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[customerID], nil
}

// ──────────────────────────────────────────────
// MOCK REDEMPTION STORE
// ──────────────────────────────────────────────

// MockRedemptionStore is a mock implementation of RedemptionStore. It shares
// state with the mock coupon and usage repositories so the conditional
// increment behaves like the database: the limit check and the increment
// happen under one lock.
type MockRedemptionStore struct {
	mu         sync.Mutex
	couponRepo *MockCouponRepository
	usageRepo  *MockUsageRepository

	// Counters
	CommitCallCount int32

	// Error injection
	CommitError error
}

// NewMockRedemptionStore creates a new mock redemption store backed by the
// given repositories.
func NewMockRedemptionStore(couponRepo *MockCouponRepository, usageRepo *MockUsageRepository) *MockRedemptionStore {
	return &MockRedemptionStore{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

func (m *MockRedemptionStore) CommitRedemption(ctx context.Context, couponID string, record *domain.UsageRecord) error {
	atomic.AddInt32(&m.CommitCallCount, 1)
	if m.CommitError != nil {
		return m.CommitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.couponRepo.mu.Lock()
	coupon := m.couponRepo.findByID(couponID)
	if coupon == nil {
		m.couponRepo.mu.Unlock()
		return repository.ErrNotFound
	}
	if coupon.TotalUsageLimit != nil && coupon.CurrentUsageCount >= *coupon.TotalUsageLimit {
		m.couponRepo.mu.Unlock()
		return repository.ErrLimitReached
	}
	coupon.CurrentUsageCount++
	m.couponRepo.mu.Unlock()

	m.usageRepo.AddRecord(record)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireRedemptionLock(ctx context.Context, customerID, couponCode string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:redemption:" + customerID + ":" + couponCode
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseRedemptionLock(ctx context.Context, customerID, couponCode string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:redemption:"+customerID+":"+couponCode)
	return nil
}

// IsLocked checks if a redemption lock is held (for test assertions).
func (m *MockLockStore) IsLocked(customerID, couponCode string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:redemption:"+customerID+":"+couponCode]
	return exists && time.Now().Before(expiry)
}
