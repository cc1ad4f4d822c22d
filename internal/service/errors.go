package service

import "errors"

var (
	// ErrCouponNotFound is returned when no coupon matches the given code.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponCodeExists is returned when creating a coupon with a taken code.
	ErrCouponCodeExists = errors.New("coupon code already exists")

	// ErrCouponInactive is returned when the coupon has been disabled.
	ErrCouponInactive = errors.New("coupon is not active")

	// ErrCouponNotYetActive is returned before the validity window opens.
	ErrCouponNotYetActive = errors.New("coupon is not yet valid")

	// ErrCouponExpired is returned after the validity window closes.
	ErrCouponExpired = errors.New("coupon has expired")

	// ErrFareBelowMinimum is returned when the fare is under the coupon's minimum.
	ErrFareBelowMinimum = errors.New("fare is below the coupon minimum")

	// ErrCouponLimitReached is returned when the global usage limit is exhausted,
	// including the case where a concurrent redemption won the race after
	// validation passed.
	ErrCouponLimitReached = errors.New("coupon usage limit reached")

	// ErrRedemptionInProgress is returned when another redemption of the same
	// coupon by the same customer is already being committed.
	ErrRedemptionInProgress = errors.New("redemption already in progress")

	// ErrInvalidCustomerID is returned when customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidCouponCode is returned when the coupon code is empty.
	ErrInvalidCouponCode = errors.New("invalid coupon code")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidFare is returned when the fare is zero or negative.
	ErrInvalidFare = errors.New("invalid fare amount")
)

// IneligibleError is returned when the eligibility evaluator rejects a
// coupon. It carries the structured reason so callers can branch on the code
// instead of parsing prose.
type IneligibleError struct {
	Reason *Reason
}

func (e *IneligibleError) Error() string {
	return e.Reason.Message()
}
