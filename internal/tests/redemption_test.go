package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"promo/internal/domain"
	"promo/internal/service"
)

// testFixture bundles a CouponService with its mock dependencies.
type testFixture struct {
	svc        *service.CouponService
	couponRepo *MockCouponRepository
	usageRepo  *MockUsageRepository
	rideRepo   *MockRideHistoryRepository
	store      *MockRedemptionStore
	lockStore  *MockLockStore
}

func newTestFixture() *testFixture {
	couponRepo := NewMockCouponRepository()
	usageRepo := NewMockUsageRepository()
	rideRepo := NewMockRideHistoryRepository()
	store := NewMockRedemptionStore(couponRepo, usageRepo)
	lockStore := NewMockLockStore()

	return &testFixture{
		svc:        service.NewCouponService(couponRepo, usageRepo, rideRepo, store, lockStore),
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
		rideRepo:   rideRepo,
		store:      store,
		lockStore:  lockStore,
	}
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

// activeCoupon returns a live coupon with no eligibility restrictions.
func activeCoupon(code string) *domain.Coupon {
	return &domain.Coupon{
		ID:                 "id-" + code,
		Code:               code,
		DiscountType:       domain.DiscountTypePercentage,
		DiscountValue:      20,
		ApplicableVehicles: []string{domain.VehicleAll},
		RideRule:           domain.AllRides{},
		MaxUsagePerUser:    1,
		ValidFrom:          time.Now().Add(-24 * time.Hour),
		ValidUntil:         time.Now().Add(24 * time.Hour),
		IsActive:           true,
		EligibleUserTypes:  []domain.UserType{domain.UserTypeAll},
	}
}

func TestRedeem_Success(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	coupon := activeCoupon("SAVE20")
	coupon.MaxDiscountAmount = floatPtr(50)
	f.couponRepo.AddCoupon(coupon)

	result, err := f.svc.Redeem(context.Background(), service.RedeemRequest{
		CustomerID:   "customer-1",
		Code:         "SAVE20",
		TripID:       "trip-1",
		OriginalFare: 500,
		VehicleType:  "sedan",
	})
	if err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if result.DiscountAmount != 50 {
		t.Errorf("discount = %v, want 50 (capped)", result.DiscountAmount)
	}
	if result.FinalFare != 450 {
		t.Errorf("final fare = %v, want 450", result.FinalFare)
	}

	// The ledger entry and the usage increment must both be committed.
	record := f.usageRepo.GetRecordByTripID("trip-1")
	if record == nil {
		t.Fatal("no ledger entry written")
	}
	if record.CustomerID != "customer-1" || record.CouponCode != "SAVE20" {
		t.Errorf("ledger entry = %+v", record)
	}
	if got := f.couponRepo.GetCoupon("SAVE20").CurrentUsageCount; got != 1 {
		t.Errorf("usage count = %d, want 1", got)
	}

	// The redemption lock is released on the way out.
	if f.lockStore.IsLocked("customer-1", "SAVE20") {
		t.Error("redemption lock still held after success")
	}
}

func TestRedeem_CodeIsNormalized(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	f.couponRepo.AddCoupon(activeCoupon("SAVE20"))

	_, err := f.svc.Redeem(context.Background(), service.RedeemRequest{
		CustomerID:   "customer-1",
		Code:         "  save20 ",
		TripID:       "trip-1",
		OriginalFare: 100,
	})
	if err != nil {
		t.Fatalf("Redeem with unnormalized code failed: %v", err)
	}
}

func TestRedeem_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(f *testFixture)
		req     service.RedeemRequest
		wantErr error
	}{
		{
			name:    "unknown code",
			setup:   func(f *testFixture) {},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "NOPE", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrCouponNotFound,
		},
		{
			name: "inactive coupon",
			setup: func(f *testFixture) {
				coupon := activeCoupon("OFF")
				coupon.IsActive = false
				f.couponRepo.AddCoupon(coupon)
			},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "OFF", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrCouponInactive,
		},
		{
			name: "not yet active",
			setup: func(f *testFixture) {
				coupon := activeCoupon("SOON")
				coupon.ValidFrom = time.Now().Add(time.Hour)
				f.couponRepo.AddCoupon(coupon)
			},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "SOON", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrCouponNotYetActive,
		},
		{
			name: "expired",
			setup: func(f *testFixture) {
				coupon := activeCoupon("OLD")
				coupon.ValidUntil = time.Now().Add(-time.Hour)
				f.couponRepo.AddCoupon(coupon)
			},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "OLD", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrCouponExpired,
		},
		{
			name: "fare below minimum",
			setup: func(f *testFixture) {
				coupon := activeCoupon("BIG")
				coupon.MinFareAmount = 200
				f.couponRepo.AddCoupon(coupon)
			},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "BIG", TripID: "t1", OriginalFare: 150},
			wantErr: service.ErrFareBelowMinimum,
		},
		{
			name:    "missing customer",
			setup:   func(f *testFixture) {},
			req:     service.RedeemRequest{Code: "SAVE20", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrInvalidCustomerID,
		},
		{
			name:    "missing trip",
			setup:   func(f *testFixture) {},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "SAVE20", OriginalFare: 100},
			wantErr: service.ErrInvalidTripID,
		},
		{
			name:    "non-positive fare",
			setup:   func(f *testFixture) {},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "SAVE20", TripID: "t1", OriginalFare: 0},
			wantErr: service.ErrInvalidFare,
		},
		{
			name:    "blank code",
			setup:   func(f *testFixture) {},
			req:     service.RedeemRequest{CustomerID: "c1", Code: "   ", TripID: "t1", OriginalFare: 100},
			wantErr: service.ErrInvalidCouponCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture()
			tt.setup(f)

			_, err := f.svc.Redeem(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			// Rejections must leave no partial state.
			if n := f.usageRepo.CountRecords(); n != 0 {
				t.Errorf("ledger has %d entries after rejection", n)
			}
			if n := f.store.CommitCallCount; n != 0 {
				t.Errorf("commit called %d times after rejection", n)
			}
		})
	}
}

func TestRedeem_AfterDeactivation(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	f.couponRepo.AddCoupon(activeCoupon("SAVE20"))
	ctx := context.Background()

	// Soft delete: the row stays, redemptions stop.
	if err := f.couponRepo.SetActive(ctx, "SAVE20", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	_, err := f.svc.Redeem(ctx, service.RedeemRequest{
		CustomerID: "customer-1", Code: "SAVE20", TripID: "trip-1", OriginalFare: 100,
	})
	if !errors.Is(err, service.ErrCouponInactive) {
		t.Fatalf("error = %v, want %v", err, service.ErrCouponInactive)
	}

	// Re-enabling restores redemption.
	if err := f.couponRepo.SetActive(ctx, "SAVE20", true); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if _, err := f.svc.Redeem(ctx, service.RedeemRequest{
		CustomerID: "customer-1", Code: "SAVE20", TripID: "trip-2", OriginalFare: 100,
	}); err != nil {
		t.Fatalf("Redeem after reactivation failed: %v", err)
	}
}

func TestRedeem_Ineligible(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	coupon := activeCoupon("FIRST")
	coupon.RideRule = domain.FirstRide{}
	f.couponRepo.AddCoupon(coupon)
	f.rideRepo.SetCompletedRides("customer-1", 3)

	_, err := f.svc.Redeem(context.Background(), service.RedeemRequest{
		CustomerID:   "customer-1",
		Code:         "FIRST",
		TripID:       "trip-1",
		OriginalFare: 100,
	})

	var ineligible *service.IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("error = %v, want IneligibleError", err)
	}
	if ineligible.Reason.Code != service.ReasonFirstRideOnly {
		t.Errorf("reason code = %s, want %s", ineligible.Reason.Code, service.ReasonFirstRideOnly)
	}
	if f.usageRepo.CountRecords() != 0 {
		t.Error("ledger entry written for ineligible redemption")
	}
	if got := f.couponRepo.GetCoupon("FIRST").CurrentUsageCount; got != 0 {
		t.Errorf("usage count = %d after ineligible redemption", got)
	}
	if f.lockStore.IsLocked("customer-1", "FIRST") {
		t.Error("redemption lock still held after rejection")
	}
}

func TestRedeem_PerUserLimit(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	coupon := activeCoupon("ONCE")
	coupon.MaxUsagePerUser = 1
	f.couponRepo.AddCoupon(coupon)

	ctx := context.Background()
	if _, err := f.svc.Redeem(ctx, service.RedeemRequest{
		CustomerID: "customer-1", Code: "ONCE", TripID: "trip-1", OriginalFare: 100,
	}); err != nil {
		t.Fatalf("first redemption failed: %v", err)
	}

	_, err := f.svc.Redeem(ctx, service.RedeemRequest{
		CustomerID: "customer-1", Code: "ONCE", TripID: "trip-2", OriginalFare: 100,
	})
	var ineligible *service.IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("second redemption error = %v, want IneligibleError", err)
	}
	if ineligible.Reason.Code != service.ReasonUserLimitReached {
		t.Errorf("reason code = %s, want %s", ineligible.Reason.Code, service.ReasonUserLimitReached)
	}

	// Another customer is unaffected.
	if _, err := f.svc.Redeem(ctx, service.RedeemRequest{
		CustomerID: "customer-2", Code: "ONCE", TripID: "trip-3", OriginalFare: 100,
	}); err != nil {
		t.Fatalf("other customer's redemption failed: %v", err)
	}
}

func TestRedeem_GlobalLimitConcurrent(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	coupon := activeCoupon("LAST1")
	coupon.TotalUsageLimit = intPtr(1)
	f.couponRepo.AddCoupon(coupon)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(context.Background(), service.RedeemRequest{
				CustomerID:   "customer-" + string(rune('a'+i)),
				Code:         "LAST1",
				TripID:       "trip-" + string(rune('a'+i)),
				OriginalFare: 100,
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, service.ErrCouponLimitReached):
		default:
			var ineligible *service.IneligibleError
			if errors.As(err, &ineligible) && ineligible.Reason.Code == service.ReasonGlobalLimitReached {
				continue
			}
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("successes = %d, want exactly 1", successes)
	}
	if got := f.couponRepo.GetCoupon("LAST1").CurrentUsageCount; got != 1 {
		t.Errorf("usage count = %d, want 1", got)
	}
	if got := f.usageRepo.CountRecords(); got != 1 {
		t.Errorf("ledger entries = %d, want 1", got)
	}
}

func TestRedeem_LockHeldByAnotherRequest(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	f.couponRepo.AddCoupon(activeCoupon("SAVE20"))
	f.lockStore.ForceAcquireFailure = true

	_, err := f.svc.Redeem(context.Background(), service.RedeemRequest{
		CustomerID: "customer-1", Code: "SAVE20", TripID: "trip-1", OriginalFare: 100,
	})
	if !errors.Is(err, service.ErrRedemptionInProgress) {
		t.Fatalf("error = %v, want %v", err, service.ErrRedemptionInProgress)
	}
	if f.usageRepo.CountRecords() != 0 {
		t.Error("ledger entry written while lock was contended")
	}
}

func TestValidate_PreviewsWithoutCommitting(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	f.couponRepo.AddCoupon(activeCoupon("SAVE20"))

	result, err := f.svc.Validate(context.Background(), service.ValidateRequest{
		CustomerID:    "customer-1",
		Code:          "save20",
		EstimatedFare: 200,
		VehicleType:   "sedan",
	})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if result.DiscountAmount != 40 || result.FinalFare != 160 {
		t.Errorf("preview = %+v, want discount 40, final 160", result)
	}

	if f.usageRepo.CountRecords() != 0 {
		t.Error("validation wrote a ledger entry")
	}
	if got := f.couponRepo.GetCoupon("SAVE20").CurrentUsageCount; got != 0 {
		t.Errorf("validation incremented usage count to %d", got)
	}
	if f.store.CommitCallCount != 0 {
		t.Error("validation invoked the redemption commit")
	}
	if f.lockStore.AcquireCallCount != 0 {
		t.Error("validation acquired the redemption lock")
	}
}

func TestValidate_SurfacesIneligibility(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	coupon := activeCoupon("SEDANS")
	coupon.ApplicableVehicles = []string{"sedan"}
	f.couponRepo.AddCoupon(coupon)

	_, err := f.svc.Validate(context.Background(), service.ValidateRequest{
		CustomerID:    "customer-1",
		Code:          "SEDANS",
		EstimatedFare: 200,
		VehicleType:   "bike",
	})

	var ineligible *service.IneligibleError
	if !errors.As(err, &ineligible) {
		t.Fatalf("error = %v, want IneligibleError", err)
	}
	if ineligible.Reason.Code != service.ReasonVehicleNotApplicable {
		t.Errorf("reason code = %s, want %s", ineligible.Reason.Code, service.ReasonVehicleNotApplicable)
	}
}

func TestCreateCoupon(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	ctx := context.Background()

	created, err := f.svc.CreateCoupon(ctx, service.CreateCouponRequest{Coupon: activeCoupon(" welcome50 ")})
	if err != nil {
		t.Fatalf("CreateCoupon failed: %v", err)
	}
	if created.Code != "WELCOME50" {
		t.Errorf("code = %q, want normalized %q", created.Code, "WELCOME50")
	}
	if created.ID == "" {
		t.Error("no ID assigned")
	}
	if created.CurrentUsageCount != 0 {
		t.Errorf("usage count = %d, want 0", created.CurrentUsageCount)
	}

	// Duplicate code is rejected.
	_, err = f.svc.CreateCoupon(ctx, service.CreateCouponRequest{Coupon: activeCoupon("WELCOME50")})
	if !errors.Is(err, service.ErrCouponCodeExists) {
		t.Errorf("duplicate create error = %v, want %v", err, service.ErrCouponCodeExists)
	}

	// Invalid definitions never reach storage.
	bad := activeCoupon("BAD")
	bad.DiscountValue = 150
	_, err = f.svc.CreateCoupon(ctx, service.CreateCouponRequest{Coupon: bad})
	if !errors.Is(err, domain.ErrInvalidDiscountValue) {
		t.Errorf("invalid create error = %v, want %v", err, domain.ErrInvalidDiscountValue)
	}
}

func TestGetCoupon(t *testing.T) {
	t.Parallel()

	f := newTestFixture()
	f.couponRepo.AddCoupon(activeCoupon("SAVE20"))

	coupon, err := f.svc.GetCoupon(context.Background(), "save20")
	if err != nil {
		t.Fatalf("GetCoupon failed: %v", err)
	}
	if coupon.Code != "SAVE20" {
		t.Errorf("code = %q, want SAVE20", coupon.Code)
	}

	if _, err := f.svc.GetCoupon(context.Background(), "MISSING"); !errors.Is(err, service.ErrCouponNotFound) {
		t.Errorf("error = %v, want %v", err, service.ErrCouponNotFound)
	}
}
