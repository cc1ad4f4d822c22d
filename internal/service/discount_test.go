package service

import (
	"testing"

	"promo/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestComputeDiscount_Percentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		value        float64
		cap          *float64
		fare         float64
		wantDiscount float64
		wantFinal    float64
	}{
		{"plain percentage", 20, nil, 200, 40, 160},
		{"cap not reached", 20, floatPtr(50), 200, 40, 160},
		{"cap reached", 20, floatPtr(50), 500, 50, 450},
		{"full discount", 100, nil, 120, 120, 0},
		{"fractional result preserved", 15, nil, 12.5, 1.875, 10.625},
		{"zero fare", 20, nil, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := &domain.Coupon{
				DiscountType:      domain.DiscountTypePercentage,
				DiscountValue:     tt.value,
				MaxDiscountAmount: tt.cap,
			}

			d := ComputeDiscount(coupon, tt.fare)
			if d.DiscountAmount != tt.wantDiscount {
				t.Errorf("discount = %v, want %v", d.DiscountAmount, tt.wantDiscount)
			}
			if d.FinalFare != tt.wantFinal {
				t.Errorf("final fare = %v, want %v", d.FinalFare, tt.wantFinal)
			}
		})
	}
}

func TestComputeDiscount_Fixed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		value        float64
		fare         float64
		wantDiscount float64
		wantFinal    float64
	}{
		{"below fare", 50, 200, 50, 150},
		{"equal to fare", 80, 80, 80, 0},
		{"clamped to fare", 100, 80, 80, 0},
		{"zero fare", 100, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := &domain.Coupon{
				DiscountType:  domain.DiscountTypeFixed,
				DiscountValue: tt.value,
			}

			d := ComputeDiscount(coupon, tt.fare)
			if d.DiscountAmount != tt.wantDiscount {
				t.Errorf("discount = %v, want %v", d.DiscountAmount, tt.wantDiscount)
			}
			if d.FinalFare != tt.wantFinal {
				t.Errorf("final fare = %v, want %v", d.FinalFare, tt.wantFinal)
			}
		})
	}
}

func TestComputeDiscount_NeverNegative(t *testing.T) {
	t.Parallel()

	coupon := &domain.Coupon{
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: 500,
	}

	for _, fare := range []float64{0, 0.01, 1, 499.99, 500, 10000} {
		d := ComputeDiscount(coupon, fare)
		if d.FinalFare < 0 {
			t.Errorf("fare %v: final fare %v is negative", fare, d.FinalFare)
		}
		if d.DiscountAmount < 0 || d.DiscountAmount > fare {
			t.Errorf("fare %v: discount %v outside [0, fare]", fare, d.DiscountAmount)
		}
		if d.DiscountAmount+d.FinalFare != fare {
			t.Errorf("fare %v: discount %v + final %v != fare", fare, d.DiscountAmount, d.FinalFare)
		}
	}
}
