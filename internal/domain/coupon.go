package domain

import (
	"strings"
	"time"
)

// DiscountType determines how a coupon's discount value is interpreted.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// UserType restricts a coupon to new or existing riders.
type UserType string

const (
	UserTypeNew      UserType = "NEW"
	UserTypeExisting UserType = "EXISTING"
	UserTypeAll      UserType = "ALL"
)

// VehicleAll is the sentinel tag meaning a coupon applies to every vehicle class.
const VehicleAll = "all"

// Coupon represents a discount offer definition with its eligibility rules
// and usage limits.
type Coupon struct {
	ID                 string
	Code               string // unique, stored uppercase
	Description        string
	DiscountType       DiscountType
	DiscountValue      float64
	MaxDiscountAmount  *float64 // cap for PERCENTAGE discounts, nil = uncapped
	MinFareAmount      float64
	ApplicableVehicles []string // lowercase vehicle tags, or the "all" sentinel
	RideRule           RideRule
	MaxUsagePerUser    int
	TotalUsageLimit    *int // nil = unlimited
	CurrentUsageCount  int
	ValidFrom          time.Time
	ValidUntil         time.Time
	IsActive           bool
	EligibleUserTypes  []UserType
	MinRidesCompleted  int
	MaxRidesCompleted  *int // nil = no upper bound
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeCode canonicalizes a coupon code for lookup and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeVehicle canonicalizes a vehicle-class tag.
func NormalizeVehicle(vehicleType string) string {
	return strings.ToLower(strings.TrimSpace(vehicleType))
}

// AppliesTo reports whether the coupon covers the given vehicle type.
// An empty ApplicableVehicles set matches nothing.
func (c *Coupon) AppliesTo(vehicleType string) bool {
	vt := NormalizeVehicle(vehicleType)
	for _, v := range c.ApplicableVehicles {
		if v == VehicleAll || v == vt {
			return true
		}
	}
	return false
}

// AllowsUserType reports whether the coupon's user-type restriction admits a
// rider with the given completed-ride count.
func (c *Coupon) AllowsUserType(completedRides int) bool {
	if len(c.EligibleUserTypes) == 0 {
		return true
	}
	for _, ut := range c.EligibleUserTypes {
		if ut == UserTypeAll {
			return true
		}
	}
	for _, ut := range c.EligibleUserTypes {
		if ut == UserTypeNew && completedRides == 0 {
			return true
		}
		if ut == UserTypeExisting && completedRides > 0 {
			return true
		}
	}
	return false
}

// WithinWindow reports whether now falls inside the coupon's validity window.
func (c *Coupon) WithinWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// Validate checks the coupon definition for configuration errors.
// It returns the first violation found.
func (c *Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return ErrEmptyCode
	}
	switch c.DiscountType {
	case DiscountTypePercentage:
		if c.DiscountValue <= 0 || c.DiscountValue > 100 {
			return ErrInvalidDiscountValue
		}
	case DiscountTypeFixed:
		if c.DiscountValue <= 0 {
			return ErrInvalidDiscountValue
		}
		if c.MaxDiscountAmount != nil {
			// The cap only makes sense for percentage discounts.
			return ErrInvalidDiscountConfig
		}
	default:
		return ErrInvalidDiscountType
	}
	if c.MaxDiscountAmount != nil && *c.MaxDiscountAmount <= 0 {
		return ErrInvalidDiscountConfig
	}
	if c.MinFareAmount < 0 {
		return ErrInvalidMinFare
	}
	if c.MaxUsagePerUser < 1 {
		return ErrInvalidUsageLimit
	}
	if c.TotalUsageLimit != nil && *c.TotalUsageLimit < 1 {
		return ErrInvalidUsageLimit
	}
	if c.ValidUntil.Before(c.ValidFrom) {
		return ErrInvalidValidityWindow
	}
	if c.MinRidesCompleted < 0 {
		return ErrInvalidRideBounds
	}
	if c.MaxRidesCompleted != nil && *c.MaxRidesCompleted < c.MinRidesCompleted {
		return ErrInvalidRideBounds
	}
	for _, ut := range c.EligibleUserTypes {
		if ut != UserTypeNew && ut != UserTypeExisting && ut != UserTypeAll {
			return ErrInvalidUserType
		}
	}
	if c.RideRule == nil {
		return ErrInvalidRideRule
	}
	return c.RideRule.validate()
}
