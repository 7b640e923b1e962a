package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gigbook/services/booking"
	"gigbook/services/payment"
	"gigbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FieldError is one failed binding rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func statusFor(err error) int {
	switch booking.KindOf(err) {
	case booking.KindInvalidRequest, booking.KindInvalidRange, booking.KindInvalidRate:
		return http.StatusBadRequest
	case booking.KindNotFound:
		return http.StatusNotFound
	case booking.KindProviderUnavailable, booking.KindSlotConflict, booking.KindInvalidState, booking.KindBusy:
		return http.StatusConflict
	case booking.KindForbidden:
		return http.StatusForbidden
	case booking.KindGatewayError:
		var gerr *payment.GatewayError
		if errors.As(err, &gerr) && gerr.StatusCode == http.StatusPaymentRequired {
			return http.StatusPaymentRequired
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Business errors carry their message;
// anything unclassified is logged and hidden behind a generic 500.
func respondError(c *gin.Context, err error) {
	kind := booking.KindOf(err)
	status := statusFor(err)

	switch kind {
	case "":
		ref := uuid.New().String()
		getLogger(c).Error("request failed", zap.String("ref", ref), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal Server Error", "ref": ref})
	case booking.KindReconciliationRequired:
		// Full detail was logged by the service; the ref ties this response to it.
		ref := uuid.New().String()
		getLogger(c).Error("reconciliation required", zap.String("ref", ref), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{
			"error":     err.Error(),
			"kind":      kind,
			"ref":       ref,
			"retryable": false,
		})
	default:
		if status >= http.StatusInternalServerError {
			getLogger(c).Warn("request failed", zap.String("kind", string(kind)), zap.Error(err))
		}
		c.AbortWithStatusJSON(status, utils.ErrorResponse{Error: err.Error(), Kind: string(kind)})
	}
}

// respondBindError renders binding failures field by field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{
				Field: lowerFirst(fe.Field()),
				Rule:  fe.Tag(),
				Param: fe.Param(),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{
			Error:   "invalid request body",
			Kind:    string(booking.KindInvalidRequest),
			Details: details,
		})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, utils.ErrorResponse{
		Error:   "invalid request body",
		Kind:    string(booking.KindInvalidRequest),
		Details: err.Error(),
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
