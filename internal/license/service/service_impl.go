package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	"github.com/smallbiznis/keygate/internal/clock"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	customerservice "github.com/smallbiznis/keygate/internal/customer/service"
	"github.com/smallbiznis/keygate/internal/keygen"
	"github.com/smallbiznis/keygate/internal/license/domain"
	obsmetrics "github.com/smallbiznis/keygate/internal/observability/metrics"
	"github.com/smallbiznis/keygate/internal/plan"
	"github.com/smallbiznis/keygate/internal/providers/email"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// keyGenAttempts bounds retries when a freshly generated key collides with
// an existing one. With a 160-bit keyspace a single retry is already rare.
const keyGenAttempts = 5

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	TeamRepo    teamdomain.Repository
	Teams       teamdomain.Service
	Customers   customerdomain.Service
	Activations activationdomain.Service
	Email       email.Provider
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	teamRepo    teamdomain.Repository
	teams       teamdomain.Service
	customers   customerdomain.Service
	activations activationdomain.Service
	email       email.Provider
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("license.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		teamRepo:    p.TeamRepo,
		teams:       p.Teams,
		customers:   p.Customers,
		activations: p.Activations,
		email:       p.Email,
		metrics:     p.Metrics,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssueResult, error) {
	if !plan.Valid(req.Plan) {
		return nil, domain.ErrInvalidPlan
	}

	paymentRef := strings.TrimSpace(req.PaymentRef)
	if paymentRef != "" {
		// Webhook deliveries can repeat; one order never issues twice.
		existing, err := s.repo.FindByPaymentRef(ctx, s.db, paymentRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &domain.IssueResult{
				LicenseID:    existing.ID,
				LicenseKey:   existing.LicenseKey,
				Plan:         existing.Plan,
				SeatCount:    existing.SeatCount,
				TeamID:       existing.TeamID,
				UpdatesUntil: existing.UpdatesUntil,
			}, nil
		}
	}

	seatCount, err := plan.ValidateSeatCount(req.Plan, req.SeatCount)
	if err != nil {
		return nil, err
	}
	maxActivations, err := plan.MaxActivationsFor(req.Plan, seatCount)
	if err != nil {
		return nil, err
	}
	prefix, err := plan.PrefixFor(req.Plan)
	if err != nil {
		return nil, err
	}

	purchaser, err := s.customers.Create(ctx, customerdomain.CreateCustomerRequest{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	license := domain.License{
		ID:             s.genID.Generate(),
		CustomerID:     purchaser.ID,
		Plan:           req.Plan,
		Status:         domain.StatusActive,
		MaxActivations: maxActivations,
		SeatCount:      seatCount,
		PaymentRef:     paymentRef,
		PurchasedAt:    now,
		UpdatesUntil:   now.AddDate(1, 0, 0),
		CreatedAt:      now,
	}

	for attempt := 0; ; attempt++ {
		key, err := keygen.Generate(prefix)
		if err != nil {
			return nil, err
		}
		license.LicenseKey = key

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if plan.IsSeatBased(req.Plan) {
				teamName := strings.TrimSpace(req.TeamName)
				if teamName == "" {
					teamName = purchaser.Email + " team"
				}
				team, err := s.teams.CreateWithOwner(ctx, tx, teamName, purchaser)
				if err != nil {
					return err
				}
				license.TeamID = &team.ID
			}
			return s.repo.Insert(ctx, tx, &license)
		})
		if err == nil {
			break
		}
		if dbpkg.IsDuplicateKeyErr(err) && attempt < keyGenAttempts-1 {
			s.log.Warn("license key collision, regenerating", zap.Int("attempt", attempt+1))
			license.TeamID = nil
			continue
		}
		return nil, err
	}

	s.metrics.RecordLicenseIssued(string(license.Plan))
	s.log.Info("license issued",
		zap.String("plan", string(license.Plan)),
		zap.Int("seat_count", license.SeatCount),
		zap.Int("max_activations", license.MaxActivations),
	)
	return &domain.IssueResult{
		LicenseID:    license.ID,
		LicenseKey:   license.LicenseKey,
		Plan:         license.Plan,
		SeatCount:    license.SeatCount,
		TeamID:       license.TeamID,
		UpdatesUntil: license.UpdatesUntil,
	}, nil
}

func (s *Service) ResolveForActivation(ctx context.Context, req domain.ActivateRequest) (*domain.ResolvedActivation, error) {
	license, err := s.lookupByKey(ctx, req.LicenseKey)
	if err != nil {
		return nil, err
	}
	if license.Status != domain.StatusActive {
		return nil, &domain.ErrNotActive{Status: license.Status}
	}

	var teamInfo *domain.TeamInfo
	var memberID *snowflake.ID
	if plan.IsSeatBased(license.Plan) {
		binding, ok := license.TeamBinding()
		if !ok {
			// A seat-based license without a team reference violates the
			// issuance invariant; surface it as a data-integrity failure.
			return nil, domain.ErrInvalidTeamLicense
		}

		team, err := s.teamRepo.FindTeamByID(ctx, s.db, binding.TeamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, domain.ErrInvalidTeamLicense
		}

		caller, err := s.customers.FindOrCreateByEmail(ctx, s.db, req.Email)
		if err != nil {
			return nil, err
		}

		membership, err := s.teamRepo.FindActiveMember(ctx, s.db, binding.TeamID, caller.ID)
		if err != nil {
			return nil, err
		}
		if membership == nil {
			return nil, domain.ErrNotATeamMember
		}
		memberID = &caller.ID

		seatsUsed, err := s.teamRepo.CountActiveMembers(ctx, s.db, binding.TeamID)
		if err != nil {
			return nil, err
		}
		teamInfo = &domain.TeamInfo{
			TeamID:    team.ID,
			Name:      team.Name,
			SeatCount: binding.SeatCount,
			SeatsUsed: int(seatsUsed),
			Role:      membership.Role,
		}
	}

	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		// Old clients may not report a device identifier; treat each such
		// call as a fresh device.
		deviceID = uuid.NewString()
	}

	activated, err := s.activations.Activate(ctx, activationdomain.ActivateRequest{
		LicenseID:      license.ID,
		MaxActivations: license.MaxActivations,
		CustomerID:     memberID,
		DeviceID:       deviceID,
		DeviceName:     req.DeviceName,
		OS:             req.OS,
		AppVersion:     req.AppVersion,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return &domain.ResolvedActivation{
		InstanceID:       activated.InstanceID,
		LicenseKey:       license.LicenseKey,
		Plan:             license.Plan,
		DevicesUsed:      activated.DevicesUsed,
		DevicesAllowed:   license.MaxActivations,
		UpdatesAvailable: now.Before(license.UpdatesUntil),
		UpdatesUntil:     license.UpdatesUntil,
		TeamInfo:         teamInfo,
	}, nil
}

func (s *Service) Deactivate(ctx context.Context, instanceID string) error {
	return s.activations.Deactivate(ctx, instanceID)
}

func (s *Service) InviteMember(ctx context.Context, req domain.InviteMemberRequest) (*teamdomain.InviteResult, error) {
	license, err := s.lookupByKey(ctx, req.LicenseKey)
	if err != nil {
		return nil, err
	}
	binding, ok := license.TeamBinding()
	if !ok {
		return nil, domain.ErrInvalidTeamLicense
	}

	memberEmail := customerservice.NormalizeEmail(req.MemberEmail)
	if !customerservice.ValidEmail(memberEmail) {
		return nil, customerdomain.ErrInvalidEmail
	}

	result, err := s.teams.Invite(ctx, teamdomain.InviteRequest{
		TeamID:       binding.TeamID,
		SeatCount:    binding.SeatCount,
		MemberEmail:  memberEmail,
		Role:         req.Role,
		InviterEmail: req.InviterEmail,
	})
	if err != nil {
		return nil, err
	}

	if result.Outcome == teamdomain.OutcomeInvited {
		s.sendInvitation(ctx, result.TeamName, license.LicenseKey, memberEmail)
	}
	return result, nil
}

func (s *Service) RemoveMember(ctx context.Context, req domain.RemoveMemberRequest) error {
	license, err := s.lookupByKey(ctx, req.LicenseKey)
	if err != nil {
		return err
	}
	binding, ok := license.TeamBinding()
	if !ok {
		return domain.ErrInvalidTeamLicense
	}

	return s.teams.Remove(ctx, teamdomain.RemoveRequest{
		TeamID:    binding.TeamID,
		LicenseID: license.ID,
		MemberID:  req.MemberID,
	})
}

func (s *Service) ListMembers(ctx context.Context, licenseKey string) (*teamdomain.MemberList, error) {
	license, err := s.lookupByKey(ctx, licenseKey)
	if err != nil {
		return nil, err
	}
	binding, ok := license.TeamBinding()
	if !ok {
		return nil, domain.ErrInvalidTeamLicense
	}

	return s.teams.ListMembers(ctx, teamdomain.ListRequest{
		TeamID:    binding.TeamID,
		LicenseID: license.ID,
		SeatCount: binding.SeatCount,
	})
}

func (s *Service) Revoke(ctx context.Context, licenseKey string) error {
	return s.transition(ctx, licenseKey, domain.StatusRevoked)
}

func (s *Service) Expire(ctx context.Context, licenseKey string) error {
	return s.transition(ctx, licenseKey, domain.StatusExpired)
}

func (s *Service) GetByKey(ctx context.Context, licenseKey string) (*domain.License, error) {
	return s.lookupByKey(ctx, licenseKey)
}

func (s *Service) lookupByKey(ctx context.Context, raw string) (*domain.License, error) {
	key := keygen.Normalize(raw)
	if !keygen.ValidFormat(key) {
		return nil, domain.ErrInvalidKeyFormat
	}
	license, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return nil, domain.ErrKeyNotFound
	}
	return license, nil
}

// transition applies a one-way status change. Revoked and expired licenses
// stay that way; there is no resurrection path.
func (s *Service) transition(ctx context.Context, licenseKey string, target domain.Status) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := keygen.Normalize(licenseKey)
		if !keygen.ValidFormat(key) {
			return domain.ErrInvalidKeyFormat
		}
		license, err := s.repo.FindByKey(ctx, tx, key)
		if err != nil {
			return err
		}
		if license == nil {
			return domain.ErrKeyNotFound
		}
		if license.Status == target {
			return nil
		}
		if license.Status != domain.StatusActive {
			return domain.ErrInvalidTransition
		}
		license.Status = target
		return s.repo.Update(ctx, tx, license)
	})
}
