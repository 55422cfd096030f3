package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	checkoutdomain "github.com/smallbiznis/keygate/internal/checkout/domain"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	"github.com/smallbiznis/keygate/internal/plan"
	releasedomain "github.com/smallbiznis/keygate/internal/release/domain"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
	webhookdomain "github.com/smallbiznis/keygate/internal/webhookevent/domain"
)

type errorPayload struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInternal           = errors.New("internal_error")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var limitErr *activationdomain.ErrLimitExceeded
	if errors.As(err, &limitErr) {
		return http.StatusForbidden, errorPayload{
			Type:    "activation_limit_exceeded",
			Message: limitErr.Error(),
			Details: map[string]any{"limit": limitErr.Limit},
		}
	}

	var seatErr *teamdomain.ErrSeatLimitExceeded
	if errors.As(err, &seatErr) {
		return http.StatusForbidden, errorPayload{
			Type:    "seat_limit_exceeded",
			Message: seatErr.Error(),
			Details: map[string]any{"seat_count": seatErr.SeatCount},
		}
	}

	var notActiveErr *licensedomain.ErrNotActive
	if errors.As(err, &notActiveErr) {
		return http.StatusForbidden, errorPayload{
			Type:    "license_not_active",
			Message: notActiveErr.Error(),
			Details: map[string]any{"status": string(notActiveErr.Status)},
		}
	}

	var seatCountErr *plan.ErrInvalidSeatCount
	if errors.As(err, &seatCountErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_seat_count",
			Message: seatCountErr.Error(),
			Details: map[string]any{
				"requested": seatCountErr.Requested,
				"min":       seatCountErr.Min,
				"max":       seatCountErr.Max,
			},
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, webhookdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "invalid_signature",
			Message: "invalid signature",
		}
	case errors.Is(err, licensedomain.ErrNotATeamMember),
		errors.Is(err, teamdomain.ErrCannotRemoveOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, teamdomain.ErrAlreadyMember),
		errors.Is(err, licensedomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, checkoutdomain.ErrProviderUnavailable),
		errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, licensedomain.ErrInvalidKeyFormat),
		errors.Is(err, licensedomain.ErrInvalidTeamLicense),
		errors.Is(err, licensedomain.ErrInvalidPlan),
		errors.Is(err, customerdomain.ErrInvalidEmail),
		errors.Is(err, teamdomain.ErrInvalidRole),
		errors.Is(err, activationdomain.ErrInvalidDevice),
		errors.Is(err, checkoutdomain.ErrInvalidPlan),
		errors.Is(err, webhookdomain.ErrInvalidPayload),
		errors.Is(err, webhookdomain.ErrUnknownProduct),
		errors.Is(err, releasedomain.ErrInvalidVersion),
		errors.Is(err, plan.ErrUnknownPlan):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, licensedomain.ErrKeyNotFound),
		errors.Is(err, teamdomain.ErrTeamNotFound),
		errors.Is(err, teamdomain.ErrMemberNotFound),
		errors.Is(err, activationdomain.ErrInstanceNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, releasedomain.ErrNoReleases),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
