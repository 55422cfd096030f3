package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/keygate/internal/activation/domain"
	"github.com/smallbiznis/keygate/internal/clock"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	LicenseRepo licensedomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	licenseRepo licensedomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("activation.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		licenseRepo: p.LicenseRepo,
	}
}

func (s *Service) Activate(ctx context.Context, req domain.ActivateRequest) (*domain.ActivateResult, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" || req.LicenseID == 0 {
		return nil, domain.ErrInvalidDevice
	}

	var result *domain.ActivateResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The license row lock serializes the count check and insert with
		// other activations of the same license. Different licenses proceed
		// in parallel.
		if _, err := s.licenseRepo.FindByIDForUpdate(ctx, tx, req.LicenseID); err != nil {
			return err
		}

		now := s.clock.Now()

		existing, err := s.repo.FindActiveByDevice(ctx, tx, req.LicenseID, deviceID)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.LastValidatedAt = now
			if name := strings.TrimSpace(req.DeviceName); name != "" {
				existing.DeviceName = name
			}
			if v := strings.TrimSpace(req.AppVersion); v != "" {
				existing.AppVersion = v
			}
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			used, err := s.repo.CountActive(ctx, tx, req.LicenseID)
			if err != nil {
				return err
			}
			result = &domain.ActivateResult{
				InstanceID:  existing.InstanceID,
				DevicesUsed: int(used),
				Existing:    true,
			}
			return nil
		}

		used, err := s.repo.CountActive(ctx, tx, req.LicenseID)
		if err != nil {
			return err
		}
		if int(used) >= req.MaxActivations {
			return &domain.ErrLimitExceeded{Limit: req.MaxActivations}
		}

		activation := domain.Activation{
			ID:              s.genID.Generate(),
			LicenseID:       req.LicenseID,
			CustomerID:      req.CustomerID,
			InstanceID:      uuid.NewString(),
			DeviceID:        deviceID,
			DeviceName:      strings.TrimSpace(req.DeviceName),
			OS:              strings.TrimSpace(req.OS),
			AppVersion:      strings.TrimSpace(req.AppVersion),
			ActivatedAt:     now,
			LastValidatedAt: now,
			IsActive:        true,
		}
		if err := s.repo.Insert(ctx, tx, &activation); err != nil {
			return err
		}

		result = &domain.ActivateResult{
			InstanceID:  activation.InstanceID,
			DevicesUsed: int(used) + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("device activated",
		zap.Int64("license_id", int64(req.LicenseID)),
		zap.String("instance_id", result.InstanceID),
		zap.Bool("existing", result.Existing),
	)
	return result, nil
}

func (s *Service) Deactivate(ctx context.Context, instanceID string) error {
	trimmed := strings.TrimSpace(instanceID)
	if trimmed == "" {
		return domain.ErrInstanceNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		activation, err := s.repo.FindActiveByInstance(ctx, tx, trimmed)
		if err != nil {
			return err
		}
		if activation == nil {
			return domain.ErrInstanceNotFound
		}
		activation.IsActive = false
		activation.LastValidatedAt = s.clock.Now()
		return s.repo.Update(ctx, tx, activation)
	})
}

func (s *Service) CountActive(ctx context.Context, licenseID snowflake.ID) (int, error) {
	count, err := s.repo.CountActive(ctx, s.db, licenseID)
	return int(count), err
}
