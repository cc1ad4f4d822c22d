package service

import (
	"fmt"
	"strings"

	"promo/internal/domain"
)

// ReasonCode identifies the eligibility rule that rejected a coupon.
// Handlers format codes into prose; tests assert on the code itself.
type ReasonCode string

const (
	ReasonVehicleNotApplicable ReasonCode = "VEHICLE_NOT_APPLICABLE"
	ReasonUserLimitReached     ReasonCode = "USER_LIMIT_REACHED"
	ReasonGlobalLimitReached   ReasonCode = "GLOBAL_LIMIT_REACHED"
	ReasonNewUsersOnly         ReasonCode = "NEW_USERS_ONLY"
	ReasonExistingUsersOnly    ReasonCode = "EXISTING_USERS_ONLY"
	ReasonMinRidesNotMet       ReasonCode = "MIN_RIDES_NOT_MET"
	ReasonMaxRidesExceeded     ReasonCode = "MAX_RIDES_EXCEEDED"
	ReasonFirstRideOnly        ReasonCode = "FIRST_RIDE_ONLY"
	ReasonNthRideNotReached    ReasonCode = "NTH_RIDE_NOT_REACHED"
	ReasonNthRidePassed        ReasonCode = "NTH_RIDE_PASSED"
	ReasonEveryNthRideNotDue   ReasonCode = "EVERY_NTH_RIDE_NOT_DUE"
	ReasonSpecificRideMismatch ReasonCode = "SPECIFIC_RIDE_MISMATCH"
)

// Reason is the structured outcome of a failed eligibility rule. Only the
// fields relevant to the code are set.
type Reason struct {
	Code               ReasonCode
	VehicleType        string
	RequiredRide       int   // NTH_RIDE target, or EVERY_NTH interval
	RidesRemaining     int   // rides left before the coupon unlocks
	NextQualifyingRide int   // next SPECIFIC_RIDES match ahead, 0 if none
	QualifyingRides    []int // full SPECIFIC_RIDES list when none remain ahead
}

// Message renders the reason as rider-facing prose.
func (r *Reason) Message() string {
	switch r.Code {
	case ReasonVehicleNotApplicable:
		if r.VehicleType == "" {
			return "not applicable for any vehicle type"
		}
		return fmt.Sprintf("not applicable for %s rides", r.VehicleType)
	case ReasonUserLimitReached:
		return "usage limit reached for this coupon"
	case ReasonGlobalLimitReached:
		return "this coupon has been fully redeemed"
	case ReasonNewUsersOnly:
		return "valid only for new users"
	case ReasonExistingUsersOnly:
		return "valid only for existing users"
	case ReasonMinRidesNotMet:
		return fmt.Sprintf("complete %d more %s to unlock this coupon", r.RidesRemaining, pluralRides(r.RidesRemaining))
	case ReasonMaxRidesExceeded:
		return fmt.Sprintf("no longer available after %d completed rides", r.RequiredRide)
	case ReasonFirstRideOnly:
		return "valid only for first ride"
	case ReasonNthRideNotReached:
		return fmt.Sprintf("valid only on ride %d, %d more %s to go", r.RequiredRide, r.RidesRemaining, pluralRides(r.RidesRemaining))
	case ReasonNthRidePassed:
		return fmt.Sprintf("valid only on ride %d, which has already passed", r.RequiredRide)
	case ReasonEveryNthRideNotDue:
		return fmt.Sprintf("valid every %d rides, %d more %s to go", r.RequiredRide, r.RidesRemaining, pluralRides(r.RidesRemaining))
	case ReasonSpecificRideMismatch:
		if r.NextQualifyingRide > 0 {
			return fmt.Sprintf("next valid on ride %d", r.NextQualifyingRide)
		}
		return fmt.Sprintf("valid only on rides %s", joinInts(r.QualifyingRides))
	default:
		return "not eligible"
	}
}

// Verdict is the result of evaluating one coupon against a rider's context.
// Reason is nil when Eligible is true.
type Verdict struct {
	Eligible bool
	Reason   *Reason
}

// EligibilityContext is the rider-side input to evaluation: the vehicle class
// of the request (empty when not vehicle-scoped), the rider's completed-ride
// count, and how many times the rider has already redeemed this coupon.
type EligibilityContext struct {
	VehicleType    string
	CompletedRides int
	UserUsageCount int
}

// Evaluate runs the eligibility rules in fixed priority order and
// short-circuits at the first failure, so the surfaced reason is always that
// of the highest-priority failing rule. It is pure: no clock, no storage.
//
// Order: vehicle → per-user usage → global usage → new/existing restriction →
// minimum rides → maximum rides → ride-number pattern. Time-window, active
// flag, and minimum-fare checks belong to the coordinator, not here.
func Evaluate(coupon *domain.Coupon, ec EligibilityContext) Verdict {
	// 1. Vehicle applicability. An empty set never matches, even for
	// requests with no vehicle scope.
	if len(coupon.ApplicableVehicles) == 0 {
		return rejected(&Reason{Code: ReasonVehicleNotApplicable, VehicleType: ec.VehicleType})
	}
	if ec.VehicleType != "" && !coupon.AppliesTo(ec.VehicleType) {
		return rejected(&Reason{Code: ReasonVehicleNotApplicable, VehicleType: strings.ToLower(ec.VehicleType)})
	}

	// 2. Per-user usage.
	if ec.UserUsageCount >= coupon.MaxUsagePerUser {
		return rejected(&Reason{Code: ReasonUserLimitReached})
	}

	// 3. Global usage.
	if coupon.TotalUsageLimit != nil && coupon.CurrentUsageCount >= *coupon.TotalUsageLimit {
		return rejected(&Reason{Code: ReasonGlobalLimitReached})
	}

	// 4. New/existing-user restriction.
	if !coupon.AllowsUserType(ec.CompletedRides) {
		if ec.CompletedRides > 0 {
			return rejected(&Reason{Code: ReasonNewUsersOnly})
		}
		return rejected(&Reason{Code: ReasonExistingUsersOnly})
	}

	// 5. Minimum rides completed.
	if ec.CompletedRides < coupon.MinRidesCompleted {
		return rejected(&Reason{
			Code:           ReasonMinRidesNotMet,
			RidesRemaining: coupon.MinRidesCompleted - ec.CompletedRides,
		})
	}

	// 6. Maximum rides completed.
	if coupon.MaxRidesCompleted != nil && ec.CompletedRides > *coupon.MaxRidesCompleted {
		return rejected(&Reason{Code: ReasonMaxRidesExceeded, RequiredRide: *coupon.MaxRidesCompleted})
	}

	// 7. Ride-number pattern on the upcoming ride.
	next := domain.RideHistory{CompletedRides: ec.CompletedRides}.NextRideNumber()
	if reason := evaluateRideRule(coupon.RideRule, next); reason != nil {
		return rejected(reason)
	}

	return Verdict{Eligible: true}
}

// evaluateRideRule checks the ride-number pattern against the upcoming ride
// number. Returns nil when the rule passes.
func evaluateRideRule(rule domain.RideRule, nextRide int) *Reason {
	switch r := rule.(type) {
	case domain.FirstRide:
		if nextRide != 1 {
			return &Reason{Code: ReasonFirstRideOnly}
		}
	case domain.NthRide:
		if nextRide < r.N {
			return &Reason{
				Code:           ReasonNthRideNotReached,
				RequiredRide:   r.N,
				RidesRemaining: r.N - nextRide,
			}
		}
		if nextRide > r.N {
			return &Reason{Code: ReasonNthRidePassed, RequiredRide: r.N}
		}
	case domain.EveryNthRide:
		if nextRide%r.N != 0 {
			return &Reason{
				Code:           ReasonEveryNthRideNotDue,
				RequiredRide:   r.N,
				RidesRemaining: r.N - nextRide%r.N,
			}
		}
	case domain.SpecificRides:
		reason := &Reason{Code: ReasonSpecificRideMismatch}
		for _, n := range r.Numbers {
			if n == nextRide {
				return nil
			}
			if n > nextRide && (reason.NextQualifyingRide == 0 || n < reason.NextQualifyingRide) {
				reason.NextQualifyingRide = n
			}
		}
		if reason.NextQualifyingRide == 0 {
			reason.QualifyingRides = r.Numbers
		}
		return reason
	case domain.AllRides:
		// Always passes.
	}
	return nil
}

func rejected(reason *Reason) Verdict {
	return Verdict{Eligible: false, Reason: reason}
}

func pluralRides(n int) string {
	if n == 1 {
		return "ride"
	}
	return "rides"
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}
