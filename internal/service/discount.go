package service

import "promo/internal/domain"

// Discount is the computed outcome of applying a coupon to a fare.
type Discount struct {
	DiscountAmount float64
	FinalFare      float64
}

// ComputeDiscount converts a coupon and a fare into a monetary discount.
// The discount is clamped to [0, fare], so the final fare is never negative.
// Fractional precision is preserved; monetary rounding happens only at the
// presentation boundary.
func ComputeDiscount(coupon *domain.Coupon, fare float64) Discount {
	var amount float64

	switch coupon.DiscountType {
	case domain.DiscountTypePercentage:
		amount = fare * coupon.DiscountValue / 100
		if coupon.MaxDiscountAmount != nil && amount > *coupon.MaxDiscountAmount {
			amount = *coupon.MaxDiscountAmount
		}
	case domain.DiscountTypeFixed:
		amount = coupon.DiscountValue
	}

	if amount > fare {
		amount = fare
	}
	if amount < 0 {
		amount = 0
	}

	return Discount{
		DiscountAmount: amount,
		FinalFare:      fare - amount,
	}
}
