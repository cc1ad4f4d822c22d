package domain

// RideRule is the ride-number pattern gating when a coupon may be redeemed.
// Each case carries only the data it needs; the evaluator dispatches on the
// concrete type.
type RideRule interface {
	// Kind returns the stable identifier used for persistence and transport.
	Kind() RideRuleKind

	validate() error
}

// RideRuleKind identifies a RideRule case on the wire and in storage.
type RideRuleKind string

const (
	RideRuleKindFirstRide     RideRuleKind = "FIRST_RIDE"
	RideRuleKindNthRide       RideRuleKind = "NTH_RIDE"
	RideRuleKindEveryNthRide  RideRuleKind = "EVERY_NTH_RIDE"
	RideRuleKindSpecificRides RideRuleKind = "SPECIFIC_RIDES"
	RideRuleKindAllRides      RideRuleKind = "ALL_RIDES"
)

// FirstRide restricts a coupon to a rider's very first ride.
type FirstRide struct{}

func (FirstRide) Kind() RideRuleKind { return RideRuleKindFirstRide }
func (FirstRide) validate() error    { return nil }

// NthRide restricts a coupon to exactly the N-th ride.
type NthRide struct {
	N int
}

func (r NthRide) Kind() RideRuleKind { return RideRuleKindNthRide }

func (r NthRide) validate() error {
	if r.N < 1 {
		return ErrInvalidRideRule
	}
	return nil
}

// EveryNthRide makes a coupon valid on every ride whose number is a multiple of N.
type EveryNthRide struct {
	N int
}

func (r EveryNthRide) Kind() RideRuleKind { return RideRuleKindEveryNthRide }

func (r EveryNthRide) validate() error {
	if r.N < 1 {
		return ErrInvalidRideRule
	}
	return nil
}

// SpecificRides makes a coupon valid only on an explicit list of ride numbers.
type SpecificRides struct {
	Numbers []int
}

func (r SpecificRides) Kind() RideRuleKind { return RideRuleKindSpecificRides }

func (r SpecificRides) validate() error {
	if len(r.Numbers) == 0 {
		return ErrInvalidRideRule
	}
	for _, n := range r.Numbers {
		if n < 1 {
			return ErrInvalidRideRule
		}
	}
	return nil
}

// AllRides places no ride-number restriction on the coupon.
type AllRides struct{}

func (AllRides) Kind() RideRuleKind { return RideRuleKindAllRides }
func (AllRides) validate() error    { return nil }

// NewRideRule constructs a RideRule from its persisted representation.
// rideNumber is used by NTH_RIDE and EVERY_NTH_RIDE; numbers by SPECIFIC_RIDES.
func NewRideRule(kind RideRuleKind, rideNumber int, numbers []int) (RideRule, error) {
	var rule RideRule
	switch kind {
	case RideRuleKindFirstRide:
		rule = FirstRide{}
	case RideRuleKindNthRide:
		rule = NthRide{N: rideNumber}
	case RideRuleKindEveryNthRide:
		rule = EveryNthRide{N: rideNumber}
	case RideRuleKindSpecificRides:
		rule = SpecificRides{Numbers: numbers}
	case RideRuleKindAllRides:
		rule = AllRides{}
	default:
		return nil, ErrInvalidRideRule
	}
	if err := rule.validate(); err != nil {
		return nil, err
	}
	return rule, nil
}
