// Package scheduler runs the background jobs that keep fulfillment moving
// when a webhook delivery fails mid-flight.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/keygate/internal/clock"
	webhookdomain "github.com/smallbiznis/keygate/internal/webhookevent/domain"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	WebhookSvc webhookdomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	webhookSvc webhookdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.WebhookSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		webhookSvc: p.WebhookSvc,
	}, nil
}

// RunOnce executes a single pass of every job.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := s.clock.Now()

	fulfilled, err := s.webhookSvc.ReplayFailed(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Error("webhook replay pass failed", zap.Error(err))
		return err
	}
	if fulfilled > 0 {
		s.log.Info("webhook replay pass",
			zap.Int("fulfilled", fulfilled),
			zap.Duration("duration", s.clock.Now().Sub(start)),
		)
	}
	return nil
}

// RunForever loops RunOnce until the context is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Warn("scheduler pass failed", zap.Error(err))
			}
		}
	}
}
