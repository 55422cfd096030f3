package service

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/keygate/internal/checkout/domain"
	"github.com/smallbiznis/keygate/internal/config"
	"github.com/smallbiznis/keygate/internal/plan"
)

// Params describes the dependencies of the checkout service.
type Params struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

type service struct {
	log    *zap.Logger
	cfg    config.Config
	client *providerClient
}

// New constructs the checkout service.
func New(p Params) domain.Service {
	return &service{
		log:    p.Log.Named("checkout.service"),
		cfg:    p.Cfg,
		client: newProviderClient(p.Cfg.Checkout.APIKey, p.Cfg.Checkout.APIBaseURL),
	}
}

func (s *service) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	var productID string
	payload := sessionPayload{
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
	}

	switch req.Plan {
	case plan.Pro:
		productID = s.cfg.Checkout.ProProductID
	case plan.Team:
		productID = s.cfg.Checkout.TeamProductID
		seats, err := plan.ValidateSeatCount(plan.Team, req.SeatCount)
		if err != nil {
			return nil, err
		}
		payload.Quantity = seats
		if name := strings.TrimSpace(req.TeamName); name != "" {
			payload.Metadata = map[string]string{"team_name": name}
		}
	default:
		// Enterprise purchases go through sales, not self-serve checkout.
		return nil, domain.ErrInvalidPlan
	}
	payload.ProductID = productID

	session, err := s.client.createSession(ctx, payload)
	if err != nil {
		s.log.Warn("create checkout session", zap.String("plan", string(req.Plan)), zap.Error(err))
		return nil, err
	}

	return &domain.Session{SessionID: session.ID, URL: session.URL}, nil
}
