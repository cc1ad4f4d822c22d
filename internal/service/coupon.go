package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"promo/internal/domain"
	"promo/internal/redis"
	"promo/internal/repository"
)

// redemptionLockTTL bounds how long a crashed redemption can keep the
// per-(customer, coupon) lock held.
const redemptionLockTTL = 10 * time.Second

// CouponService coordinates coupon listing, validation, and redemption.
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.UsageRepository
	rideRepo   repository.RideHistoryRepository
	store      repository.RedemptionStore
	lockStore  redis.LockStoreInterface
}

// NewCouponService creates a new CouponService.
func NewCouponService(
	couponRepo repository.CouponRepository,
	usageRepo repository.UsageRepository,
	rideRepo repository.RideHistoryRepository,
	store repository.RedemptionStore,
	lockStore redis.LockStoreInterface,
) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		rideRepo:   rideRepo,
		store:      store,
		lockStore:  lockStore,
	}
}

// CreateCouponRequest contains the parameters for creating a coupon.
type CreateCouponRequest struct {
	Coupon *domain.Coupon
}

// CreateCoupon validates and persists a new coupon definition.
func (s *CouponService) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*domain.Coupon, error) {
	coupon := req.Coupon
	if err := coupon.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	coupon.ID = uuid.New().String()
	coupon.Code = domain.NormalizeCode(coupon.Code)
	coupon.CurrentUsageCount = 0
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, ErrCouponCodeExists
		}
		return nil, err
	}

	return coupon, nil
}

// GetCoupon retrieves a coupon by code.
func (s *CouponService) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	if domain.NormalizeCode(code) == "" {
		return nil, ErrInvalidCouponCode
	}
	coupon, err := s.couponRepo.GetByCode(ctx, domain.NormalizeCode(code))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

// AvailableCoupon is one entry in the list-available result: the coupon
// annotated with the rider's eligibility for it.
type AvailableCoupon struct {
	Coupon          *domain.Coupon
	IsEligible      bool
	Reason          *Reason // nil when eligible
	UserUsageCount  int
	RemainingUsages int
}

// ListAvailable returns every active, time-valid coupon annotated with the
// customer's eligibility. The path is read-only and tolerates slightly stale
// usage counts; it only informs the rider's coupon list.
func (s *CouponService) ListAvailable(ctx context.Context, customerID, vehicleType string) ([]*AvailableCoupon, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}

	completed, err := s.rideRepo.CountCompletedRides(ctx, customerID)
	if err != nil {
		return nil, err
	}

	coupons, err := s.couponRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	result := make([]*AvailableCoupon, 0, len(coupons))
	for _, coupon := range coupons {
		used, err := s.usageRepo.CountByCustomerAndCoupon(ctx, customerID, coupon.ID)
		if err != nil {
			return nil, err
		}

		verdict := Evaluate(coupon, EligibilityContext{
			VehicleType:    vehicleType,
			CompletedRides: completed,
			UserUsageCount: used,
		})

		remaining := coupon.MaxUsagePerUser - used
		if remaining < 0 {
			remaining = 0
		}

		result = append(result, &AvailableCoupon{
			Coupon:          coupon,
			IsEligible:      verdict.Eligible,
			Reason:          verdict.Reason,
			UserUsageCount:  used,
			RemainingUsages: remaining,
		})
	}

	return result, nil
}

// RedemptionResult is the committed (or previewed) outcome of applying a
// coupon to a fare.
type RedemptionResult struct {
	CouponCode     string
	OriginalFare   float64
	DiscountAmount float64
	FinalFare      float64
}

// ValidateRequest contains the parameters for a dry-run validation.
type ValidateRequest struct {
	CustomerID    string
	Code          string
	EstimatedFare float64
	VehicleType   string
}

// Validate runs the full check chain against an estimated fare and returns
// the discount preview without committing any usage.
func (s *CouponService) Validate(ctx context.Context, req ValidateRequest) (*RedemptionResult, error) {
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomerID
	}
	if req.EstimatedFare <= 0 {
		return nil, ErrInvalidFare
	}

	coupon, _, err := s.checkRedeemable(ctx, req.CustomerID, req.Code, req.EstimatedFare, req.VehicleType)
	if err != nil {
		return nil, err
	}

	discount := ComputeDiscount(coupon, req.EstimatedFare)
	return &RedemptionResult{
		CouponCode:     coupon.Code,
		OriginalFare:   req.EstimatedFare,
		DiscountAmount: discount.DiscountAmount,
		FinalFare:      discount.FinalFare,
	}, nil
}

// RedeemRequest contains the parameters for redeeming a coupon against a trip.
type RedeemRequest struct {
	CustomerID   string
	Code         string
	TripID       string
	OriginalFare float64
	VehicleType  string
}

// Redeem performs the full redemption flow: re-validate, compute the
// discount, atomically increment the coupon's usage count, and append the
// ledger entry. On any rejection no usage increment and no ledger entry are
// produced.
//
// The commit is guarded two ways: a per-(customer, coupon) Redis lock
// serializes the count-then-insert sequence for the per-user limit, and the
// storage-level conditional increment re-checks the total usage limit in the
// same atomic operation, so a concurrent redemption that exhausts the limit
// after validation surfaces as ErrCouponLimitReached.
func (s *CouponService) Redeem(ctx context.Context, req RedeemRequest) (*RedemptionResult, error) {
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomerID
	}
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.OriginalFare <= 0 {
		return nil, ErrInvalidFare
	}

	code := domain.NormalizeCode(req.Code)
	if code == "" {
		return nil, ErrInvalidCouponCode
	}

	// Serialize concurrent redemptions of the same coupon by the same
	// customer before counting prior usage.
	acquired, err := s.lockStore.AcquireRedemptionLock(ctx, req.CustomerID, code, redemptionLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRedemptionInProgress
	}
	defer func() {
		_ = s.lockStore.ReleaseRedemptionLock(ctx, req.CustomerID, code)
	}()

	coupon, _, err := s.checkRedeemable(ctx, req.CustomerID, req.Code, req.OriginalFare, req.VehicleType)
	if err != nil {
		return nil, err
	}

	discount := ComputeDiscount(coupon, req.OriginalFare)

	record := &domain.UsageRecord{
		ID:             uuid.New().String(),
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		CustomerID:     req.CustomerID,
		TripID:         req.TripID,
		OriginalFare:   req.OriginalFare,
		DiscountAmount: discount.DiscountAmount,
		FinalFare:      discount.FinalFare,
		VehicleType:    req.VehicleType,
		CreatedAt:      time.Now(),
	}

	if err := s.store.CommitRedemption(ctx, coupon.ID, record); err != nil {
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, ErrCouponLimitReached
		}
		return nil, err
	}

	return &RedemptionResult{
		CouponCode:     coupon.Code,
		OriginalFare:   req.OriginalFare,
		DiscountAmount: discount.DiscountAmount,
		FinalFare:      discount.FinalFare,
	}, nil
}

// checkRedeemable runs the shared validation chain: lookup, active flag,
// validity window, minimum fare, then the eligibility rules against a freshly
// computed ride history and usage count. Returns the coupon and the rider's
// current usage count for it.
func (s *CouponService) checkRedeemable(ctx context.Context, customerID, code string, fare float64, vehicleType string) (*domain.Coupon, int, error) {
	normalized := domain.NormalizeCode(code)
	if normalized == "" {
		return nil, 0, ErrInvalidCouponCode
	}

	coupon, err := s.couponRepo.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrCouponNotFound
		}
		return nil, 0, err
	}

	now := time.Now()
	if !coupon.IsActive {
		return nil, 0, ErrCouponInactive
	}
	if now.Before(coupon.ValidFrom) {
		return nil, 0, ErrCouponNotYetActive
	}
	if now.After(coupon.ValidUntil) {
		return nil, 0, ErrCouponExpired
	}

	if fare < coupon.MinFareAmount {
		return nil, 0, ErrFareBelowMinimum
	}

	completed, err := s.rideRepo.CountCompletedRides(ctx, customerID)
	if err != nil {
		return nil, 0, err
	}

	used, err := s.usageRepo.CountByCustomerAndCoupon(ctx, customerID, coupon.ID)
	if err != nil {
		return nil, 0, err
	}

	verdict := Evaluate(coupon, EligibilityContext{
		VehicleType:    vehicleType,
		CompletedRides: completed,
		UserUsageCount: used,
	})
	if !verdict.Eligible {
		return nil, 0, &IneligibleError{Reason: verdict.Reason}
	}

	return coupon, used, nil
}
