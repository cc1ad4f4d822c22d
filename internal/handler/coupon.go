package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"promo/internal/domain"
	"promo/internal/service"
)

// CouponHandler handles HTTP requests for coupons.
type CouponHandler struct {
	couponService *service.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// CreateCouponRequest is the HTTP request body for creating a coupon.
type CreateCouponRequest struct {
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	DiscountType       string    `json:"discount_type"`
	DiscountValue      float64   `json:"discount_value"`
	MaxDiscountAmount  *float64  `json:"max_discount_amount,omitempty"`
	MinFareAmount      float64   `json:"min_fare_amount,omitempty"`
	ApplicableVehicles []string  `json:"applicable_vehicles,omitempty"`
	ApplicableFor      string    `json:"applicable_for,omitempty"`
	RideNumber         int       `json:"ride_number,omitempty"`
	SpecificRides      []int     `json:"specific_ride_numbers,omitempty"`
	MaxUsagePerUser    int       `json:"max_usage_per_user,omitempty"`
	TotalUsageLimit    *int      `json:"total_usage_limit,omitempty"`
	ValidFrom          time.Time `json:"valid_from"`
	ValidUntil         time.Time `json:"valid_until"`
	EligibleUserTypes  []string  `json:"eligible_user_types,omitempty"`
	MinRidesCompleted  int       `json:"min_rides_completed,omitempty"`
	MaxRidesCompleted  *int      `json:"max_rides_completed,omitempty"`
}

// CouponResponse is the HTTP representation of a coupon definition.
type CouponResponse struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	DiscountType       string    `json:"discount_type"`
	DiscountValue      float64   `json:"discount_value"`
	MaxDiscountAmount  *float64  `json:"max_discount_amount,omitempty"`
	MinFareAmount      float64   `json:"min_fare_amount"`
	ApplicableVehicles []string  `json:"applicable_vehicles"`
	ApplicableFor      string    `json:"applicable_for"`
	RideNumber         int       `json:"ride_number,omitempty"`
	SpecificRides      []int     `json:"specific_ride_numbers,omitempty"`
	MaxUsagePerUser    int       `json:"max_usage_per_user"`
	TotalUsageLimit    *int      `json:"total_usage_limit,omitempty"`
	CurrentUsageCount  int       `json:"current_usage_count"`
	ValidFrom          time.Time `json:"valid_from"`
	ValidUntil         time.Time `json:"valid_until"`
	IsActive           bool      `json:"is_active"`
	EligibleUserTypes  []string  `json:"eligible_user_types"`
	MinRidesCompleted  int       `json:"min_rides_completed"`
	MaxRidesCompleted  *int      `json:"max_rides_completed,omitempty"`
}

// AvailableCouponResponse is one entry of the list-available response.
type AvailableCouponResponse struct {
	CouponResponse
	IsEligible        bool   `json:"is_eligible"`
	EligibilityReason string `json:"eligibility_reason,omitempty"`
	ReasonCode        string `json:"reason_code,omitempty"`
	UserUsageCount    int    `json:"user_usage_count"`
	RemainingUsages   int    `json:"remaining_usages"`
}

// ValidateCouponRequest is the HTTP request body for a dry-run validation.
type ValidateCouponRequest struct {
	CustomerID    string  `json:"customer_id"`
	Code          string  `json:"code"`
	EstimatedFare float64 `json:"estimated_fare"`
	VehicleType   string  `json:"vehicle_type,omitempty"`
}

// RedeemCouponRequest is the HTTP request body for redeeming a coupon.
type RedeemCouponRequest struct {
	CustomerID   string  `json:"customer_id"`
	Code         string  `json:"code"`
	TripID       string  `json:"trip_id"`
	OriginalFare float64 `json:"original_fare"`
	VehicleType  string  `json:"vehicle_type,omitempty"`
}

// RedemptionResponse is the HTTP response for validate and redeem.
type RedemptionResponse struct {
	CouponCode     string  `json:"coupon_code"`
	OriginalFare   float64 `json:"original_fare"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalFare      float64 `json:"final_fare"`
}

// CreateCoupon handles POST /v1/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	coupon, err := couponFromRequest(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.couponService.CreateCoupon(c.Request.Context(), service.CreateCouponRequest{Coupon: coupon})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, couponToResponse(created))
}

// GetCoupon handles GET /v1/coupons/:code
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	coupon, err := h.couponService.GetCoupon(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, couponToResponse(coupon))
}

// ListAvailable handles GET /v1/coupons/available
func (h *CouponHandler) ListAvailable(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "customer_id is required"})
		return
	}

	vehicleType := c.Query("vehicle_type")

	available, err := h.couponService.ListAvailable(c.Request.Context(), customerID, vehicleType)
	if err != nil {
		respondError(c, err)
		return
	}

	result := make([]AvailableCouponResponse, 0, len(available))
	for _, a := range available {
		entry := AvailableCouponResponse{
			CouponResponse:  *couponToResponse(a.Coupon),
			IsEligible:      a.IsEligible,
			UserUsageCount:  a.UserUsageCount,
			RemainingUsages: a.RemainingUsages,
		}
		if a.Reason != nil {
			entry.EligibilityReason = a.Reason.Message()
			entry.ReasonCode = string(a.Reason.Code)
		}
		result = append(result, entry)
	}

	respondJSON(c, http.StatusOK, gin.H{"coupons": result})
}

// ValidateCoupon handles POST /v1/coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.couponService.Validate(c.Request.Context(), service.ValidateRequest{
		CustomerID:    req.CustomerID,
		Code:          req.Code,
		EstimatedFare: req.EstimatedFare,
		VehicleType:   req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, redemptionToResponse(result))
}

// RedeemCoupon handles POST /v1/coupons/redeem
func (h *CouponHandler) RedeemCoupon(c *gin.Context) {
	var req RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.couponService.Redeem(c.Request.Context(), service.RedeemRequest{
		CustomerID:   req.CustomerID,
		Code:         req.Code,
		TripID:       req.TripID,
		OriginalFare: req.OriginalFare,
		VehicleType:  req.VehicleType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, redemptionToResponse(result))
}

// couponFromRequest converts the create request into a domain coupon,
// applying the documented defaults for omitted fields.
func couponFromRequest(req *CreateCouponRequest) (*domain.Coupon, error) {
	applicableFor := req.ApplicableFor
	if applicableFor == "" {
		applicableFor = string(domain.RideRuleKindAllRides)
	}

	rule, err := domain.NewRideRule(domain.RideRuleKind(applicableFor), req.RideNumber, req.SpecificRides)
	if err != nil {
		return nil, err
	}

	vehicles := req.ApplicableVehicles
	if vehicles == nil {
		vehicles = []string{domain.VehicleAll}
	}

	userTypes := make([]domain.UserType, 0, len(req.EligibleUserTypes))
	for _, ut := range req.EligibleUserTypes {
		userTypes = append(userTypes, domain.UserType(ut))
	}
	if len(userTypes) == 0 {
		userTypes = []domain.UserType{domain.UserTypeAll}
	}

	maxUsagePerUser := req.MaxUsagePerUser
	if maxUsagePerUser == 0 {
		maxUsagePerUser = 1
	}

	return &domain.Coupon{
		Code:               req.Code,
		Description:        req.Description,
		DiscountType:       domain.DiscountType(req.DiscountType),
		DiscountValue:      req.DiscountValue,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		MinFareAmount:      req.MinFareAmount,
		ApplicableVehicles: normalizeVehicles(vehicles),
		RideRule:           rule,
		MaxUsagePerUser:    maxUsagePerUser,
		TotalUsageLimit:    req.TotalUsageLimit,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
		EligibleUserTypes:  userTypes,
		MinRidesCompleted:  req.MinRidesCompleted,
		MaxRidesCompleted:  req.MaxRidesCompleted,
	}, nil
}

// couponToResponse converts a domain coupon into its HTTP representation.
func couponToResponse(coupon *domain.Coupon) *CouponResponse {
	resp := &CouponResponse{
		ID:                 coupon.ID,
		Code:               coupon.Code,
		Description:        coupon.Description,
		DiscountType:       string(coupon.DiscountType),
		DiscountValue:      coupon.DiscountValue,
		MaxDiscountAmount:  coupon.MaxDiscountAmount,
		MinFareAmount:      coupon.MinFareAmount,
		ApplicableVehicles: coupon.ApplicableVehicles,
		ApplicableFor:      string(coupon.RideRule.Kind()),
		MaxUsagePerUser:    coupon.MaxUsagePerUser,
		TotalUsageLimit:    coupon.TotalUsageLimit,
		CurrentUsageCount:  coupon.CurrentUsageCount,
		ValidFrom:          coupon.ValidFrom,
		ValidUntil:         coupon.ValidUntil,
		IsActive:           coupon.IsActive,
		MinRidesCompleted:  coupon.MinRidesCompleted,
		MaxRidesCompleted:  coupon.MaxRidesCompleted,
	}

	switch r := coupon.RideRule.(type) {
	case domain.NthRide:
		resp.RideNumber = r.N
	case domain.EveryNthRide:
		resp.RideNumber = r.N
	case domain.SpecificRides:
		resp.SpecificRides = r.Numbers
	}

	resp.EligibleUserTypes = make([]string, len(coupon.EligibleUserTypes))
	for i, ut := range coupon.EligibleUserTypes {
		resp.EligibleUserTypes[i] = string(ut)
	}

	return resp
}

// redemptionToResponse converts a redemption result, applying presentation
// rounding to the monetary amounts.
func redemptionToResponse(result *service.RedemptionResult) RedemptionResponse {
	return RedemptionResponse{
		CouponCode:     result.CouponCode,
		OriginalFare:   round2(result.OriginalFare),
		DiscountAmount: round2(result.DiscountAmount),
		FinalFare:      round2(result.FinalFare),
	}
}

func normalizeVehicles(vehicles []string) []string {
	normalized := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		normalized = append(normalized, domain.NormalizeVehicle(v))
	}
	return normalized
}
