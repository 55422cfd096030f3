package server

import (
	"errors"
	"net/http"
	"testing"

	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	checkoutdomain "github.com/smallbiznis/keygate/internal/checkout/domain"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	"github.com/smallbiznis/keygate/internal/plan"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
	webhookdomain "github.com/smallbiznis/keygate/internal/webhookevent/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		errType string
	}{
		{"invalid request", ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{"bad key format", licensedomain.ErrInvalidKeyFormat, http.StatusBadRequest, "validation_error"},
		{"invalid signature", webhookdomain.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
		{"not a team member", licensedomain.ErrNotATeamMember, http.StatusForbidden, "forbidden"},
		{"cannot remove owner", teamdomain.ErrCannotRemoveOwner, http.StatusForbidden, "forbidden"},
		{"key not found", licensedomain.ErrKeyNotFound, http.StatusNotFound, "not_found"},
		{"already member", teamdomain.ErrAlreadyMember, http.StatusConflict, "conflict"},
		{"invalid transition", licensedomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"provider down", checkoutdomain.ErrProviderUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"unmapped", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil", nil, http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.errType, payload.Type)
		})
	}
}

func TestMapErrorActivationLimitDetails(t *testing.T) {
	status, payload := mapError(&activationdomain.ErrLimitExceeded{Limit: 3})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "activation_limit_exceeded", payload.Type)
	assert.Equal(t, 3, payload.Details["limit"])
}

func TestMapErrorSeatLimitDetails(t *testing.T) {
	status, payload := mapError(&teamdomain.ErrSeatLimitExceeded{SeatCount: 5})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "seat_limit_exceeded", payload.Type)
	assert.Equal(t, 5, payload.Details["seat_count"])
}

func TestMapErrorNotActiveDetails(t *testing.T) {
	status, payload := mapError(&licensedomain.ErrNotActive{Status: licensedomain.StatusRevoked})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "license_not_active", payload.Type)
	assert.Equal(t, "revoked", payload.Details["status"])
}

func TestMapErrorSeatCountDetails(t *testing.T) {
	status, payload := mapError(&plan.ErrInvalidSeatCount{Plan: plan.Team, Requested: 2, Min: 3, Max: 100})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_seat_count", payload.Type)
	assert.Equal(t, 2, payload.Details["requested"])
	assert.Equal(t, 3, payload.Details["min"])
	assert.Equal(t, 100, payload.Details["max"])
}
