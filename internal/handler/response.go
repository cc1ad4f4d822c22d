package handler

import (
	"errors"
	"log"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"promo/internal/domain"
	"promo/internal/repository"
	"promo/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Eligibility rejections carry their machine-readable reason code; unexpected
// errors are logged and reported without internal detail.
func respondError(c *gin.Context, err error) {
	var ineligible *service.IneligibleError
	if errors.As(err, &ineligible) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error: ineligible.Reason.Message(),
			Code:  string(ineligible.Reason.Code),
		})
		return
	}

	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrCouponNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidCouponCode),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrFareBelowMinimum),
		errors.Is(err, domain.ErrEmptyCode),
		errors.Is(err, domain.ErrInvalidDiscountType),
		errors.Is(err, domain.ErrInvalidDiscountValue),
		errors.Is(err, domain.ErrInvalidDiscountConfig),
		errors.Is(err, domain.ErrInvalidMinFare),
		errors.Is(err, domain.ErrInvalidUsageLimit),
		errors.Is(err, domain.ErrInvalidValidityWindow),
		errors.Is(err, domain.ErrInvalidRideBounds),
		errors.Is(err, domain.ErrInvalidUserType),
		errors.Is(err, domain.ErrInvalidRideRule):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrCouponCodeExists),
		errors.Is(err, service.ErrCouponInactive),
		errors.Is(err, service.ErrCouponNotYetActive),
		errors.Is(err, service.ErrCouponExpired),
		errors.Is(err, service.ErrCouponLimitReached),
		errors.Is(err, service.ErrRedemptionInProgress):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// round2 applies two-decimal monetary rounding at the presentation boundary.
// Internal calculations keep full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
