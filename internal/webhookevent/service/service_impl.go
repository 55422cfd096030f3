package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/keygate/internal/clock"
	"github.com/smallbiznis/keygate/internal/config"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	obsmetrics "github.com/smallbiznis/keygate/internal/observability/metrics"
	"github.com/smallbiznis/keygate/internal/plan"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"

	"github.com/smallbiznis/keygate/internal/webhookevent/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Webhook-Signature"

const eventPaymentCompleted = "payment.completed"

// Params describes the dependencies of the webhook service.
type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Cfg      config.Config
	Repo     domain.Repository
	Licenses licensedomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	cfg      config.Config
	repo     domain.Repository
	licenses licensedomain.Service
	metrics  *obsmetrics.Metrics
}

// New constructs the webhook service.
func New(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("webhookevent.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		cfg:      p.Cfg,
		repo:     p.Repo,
		licenses: p.Licenses,
		metrics:  p.Metrics,
	}
}

type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		OrderID   string `json:"order_id"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		ProductID string `json:"product_id"`
		SeatCount int    `json:"seat_count"`
		Metadata  struct {
			TeamName string `json:"team_name"`
		} `json:"metadata"`
	} `json:"data"`
}

func (s *service) Ingest(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.verifySignature(payload, headers); err != nil {
		return err
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return domain.ErrInvalidPayload
	}
	if strings.TrimSpace(envelope.ID) == "" || strings.TrimSpace(envelope.Type) == "" {
		return domain.ErrInvalidPayload
	}

	event, err := s.recordEvent(ctx, &envelope, payload)
	if err != nil {
		return err
	}
	if event == nil {
		// Duplicate delivery of an already processed event.
		return nil
	}

	if envelope.Type != eventPaymentCompleted {
		s.log.Debug("webhook event ignored", zap.String("type", envelope.Type))
		s.metrics.RecordWebhookEvent(envelope.Type, "ignored")
		return s.markProcessed(ctx, event, "")
	}

	if err := s.fulfill(ctx, &envelope); err != nil {
		s.metrics.RecordWebhookEvent(envelope.Type, "failed")
		if markErr := s.markProcessed(ctx, event, err.Error()); markErr != nil {
			s.log.Error("record webhook failure", zap.Error(markErr))
		}
		return err
	}
	s.metrics.RecordWebhookEvent(envelope.Type, "fulfilled")
	return s.markProcessed(ctx, event, "")
}

func (s *service) verifySignature(payload []byte, headers http.Header) error {
	secret := strings.TrimSpace(s.cfg.Checkout.WebhookSecret)
	if secret == "" {
		return domain.ErrInvalidSignature
	}

	given := strings.TrimSpace(headers.Get(SignatureHeader))
	if given == "" {
		return domain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(strings.ToLower(given)), []byte(want)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// recordEvent inserts the dedupe row. It returns nil when the event was
// already received and fully processed.
func (s *service) recordEvent(ctx context.Context, envelope *webhookEnvelope, payload []byte) (*domain.WebhookEvent, error) {
	existing, err := s.repo.FindByEventID(ctx, s.db, s.cfg.Checkout.Provider, envelope.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Processed && existing.LastError == "" {
			return nil, nil
		}
		// Retry of a delivery that previously failed fulfillment.
		return existing, nil
	}

	var raw datatypes.JSONMap
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, domain.ErrInvalidPayload
	}

	event := &domain.WebhookEvent{
		ID:         s.genID.Generate(),
		Provider:   s.cfg.Checkout.Provider,
		EventID:    envelope.ID,
		EventType:  envelope.Type,
		Payload:    raw,
		ReceivedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, event); err != nil {
		if dbpkg.IsDuplicateKeyErr(err) {
			// Lost a race with a concurrent delivery of the same event.
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

func (s *service) fulfill(ctx context.Context, envelope *webhookEnvelope) error {
	planType, err := s.planForProduct(envelope.Data.ProductID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(envelope.Data.Email) == "" {
		return domain.ErrInvalidPayload
	}

	result, err := s.licenses.Issue(ctx, licensedomain.IssueRequest{
		Email:      envelope.Data.Email,
		Name:       envelope.Data.Name,
		Plan:       planType,
		SeatCount:  envelope.Data.SeatCount,
		TeamName:   envelope.Data.Metadata.TeamName,
		PaymentRef: envelope.Data.OrderID,
	})
	if err != nil {
		return err
	}

	s.log.Info("license issued from webhook",
		zap.String("event_id", envelope.ID),
		zap.String("plan", string(planType)),
		zap.Int64("license_id", int64(result.LicenseID)),
	)
	return nil
}

func (s *service) planForProduct(productID string) (plan.Type, error) {
	switch strings.TrimSpace(productID) {
	case "":
		return "", domain.ErrInvalidPayload
	case s.cfg.Checkout.ProProductID:
		return plan.Pro, nil
	case s.cfg.Checkout.TeamProductID:
		return plan.Team, nil
	default:
		return "", domain.ErrUnknownProduct
	}
}

func (s *service) ReplayFailed(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 25
	}
	events, err := s.repo.ListFailed(ctx, s.db, limit)
	if err != nil {
		return 0, err
	}

	fulfilled := 0
	for i := range events {
		event := &events[i]

		raw, err := json.Marshal(event.Payload)
		if err != nil {
			continue
		}
		var envelope webhookEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}

		if err := s.fulfill(ctx, &envelope); err != nil {
			s.log.Warn("webhook replay failed",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
			if markErr := s.markProcessed(ctx, event, err.Error()); markErr != nil {
				return fulfilled, markErr
			}
			continue
		}

		s.metrics.RecordWebhookEvent(event.EventType, "fulfilled")
		if err := s.markProcessed(ctx, event, ""); err != nil {
			return fulfilled, err
		}
		fulfilled++
	}
	return fulfilled, nil
}

func (s *service) markProcessed(ctx context.Context, event *domain.WebhookEvent, lastError string) error {
	now := s.clock.Now()
	event.Processed = true
	event.ProcessedAt = &now
	event.LastError = lastError
	return s.repo.Update(ctx, s.db, event)
}
