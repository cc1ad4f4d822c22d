package domain

import "errors"

// Coupon configuration errors, surfaced on create/update as invalid input.
var (
	// ErrEmptyCode is returned when a coupon code is empty after normalization.
	ErrEmptyCode = errors.New("coupon code is empty")

	// ErrInvalidDiscountType is returned when the discount type is unknown.
	ErrInvalidDiscountType = errors.New("invalid discount type")

	// ErrInvalidDiscountValue is returned when the discount value is out of range.
	ErrInvalidDiscountValue = errors.New("invalid discount value")

	// ErrInvalidDiscountConfig is returned when cap/value combinations are malformed.
	ErrInvalidDiscountConfig = errors.New("invalid discount configuration")

	// ErrInvalidMinFare is returned when the minimum fare is negative.
	ErrInvalidMinFare = errors.New("invalid minimum fare amount")

	// ErrInvalidUsageLimit is returned when a usage limit is below one.
	ErrInvalidUsageLimit = errors.New("invalid usage limit")

	// ErrInvalidValidityWindow is returned when valid_until precedes valid_from.
	ErrInvalidValidityWindow = errors.New("valid_until precedes valid_from")

	// ErrInvalidRideBounds is returned when min/max completed-ride bounds conflict.
	ErrInvalidRideBounds = errors.New("invalid completed-ride bounds")

	// ErrInvalidUserType is returned when an eligible user type is unknown.
	ErrInvalidUserType = errors.New("invalid eligible user type")

	// ErrInvalidRideRule is returned when the ride-number rule is malformed.
	ErrInvalidRideRule = errors.New("invalid ride rule")
)
