package response

import (
	"errors"
	"net/http"

	"carrental/internal/domain"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

type errorKind struct {
	err    error
	status int
	code   string
}

var kinds = []errorKind{
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{domain.ErrCarUnavailable, http.StatusConflict, "CAR_UNAVAILABLE"},
	{domain.ErrCarUnlisted, http.StatusConflict, "CAR_UNLISTED"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInvalidPaymentTransition, http.StatusConflict, "INVALID_PAYMENT_TRANSITION"},
	{domain.ErrDuplicatePayment, http.StatusConflict, "DUPLICATE_PAYMENT"},
	{domain.ErrAmountMismatch, http.StatusBadRequest, "AMOUNT_MISMATCH"},
	{domain.ErrRentalNotEligible, http.StatusUnprocessableEntity, "RENTAL_NOT_ELIGIBLE"},
	{domain.ErrInvalidReviewerPair, http.StatusUnprocessableEntity, "INVALID_REVIEWER_PAIR"},
}

// FromError writes the envelope for a service error. Unknown errors become 500
// and are attached to the gin context so the error logger picks them up.
func FromError(c *gin.Context, err error) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			Error(c, k.status, k.code, err.Error())
			return
		}
	}
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}
