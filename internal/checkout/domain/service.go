// Package domain defines the checkout surface: hosted payment sessions
// for license purchases.
package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/keygate/internal/plan"
)

var (
	// ErrProviderUnavailable is returned when the payments provider is not
	// configured or rejects the request.
	ErrProviderUnavailable = errors.New("provider_unavailable")

	// ErrInvalidPlan is returned for plans that cannot be purchased through
	// self-serve checkout.
	ErrInvalidPlan = errors.New("invalid_plan")
)

// SessionRequest describes a checkout session to create. TeamName is
// carried through the session metadata so fulfillment can name the team
// the way the purchaser did.
type SessionRequest struct {
	Plan       plan.Type
	SeatCount  int
	Email      string
	TeamName   string
	SuccessURL string
}

// Session is a created hosted checkout session.
type Session struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Service creates hosted checkout sessions with the payments provider.
type Service interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}
