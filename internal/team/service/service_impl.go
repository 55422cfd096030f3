package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	"github.com/smallbiznis/keygate/internal/clock"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	"github.com/smallbiznis/keygate/internal/team/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	Customers      customerdomain.Service
	ActivationRepo activationdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	customers      customerdomain.Service
	activationRepo activationdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("team.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		customers:      p.Customers,
		activationRepo: p.ActivationRepo,
	}
}

func (s *Service) CreateWithOwner(ctx context.Context, tx *gorm.DB, name string, owner *customerdomain.Customer) (*domain.Team, error) {
	trimmed := strings.TrimSpace(name)
	now := s.clock.Now()

	team := domain.Team{
		ID:        s.genID.Generate(),
		Name:      trimmed,
		Slug:      slug.Make(trimmed),
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertTeam(ctx, tx, &team); err != nil {
		return nil, err
	}

	member := domain.TeamMember{
		ID:         s.genID.Generate(),
		TeamID:     team.ID,
		CustomerID: owner.ID,
		Role:       domain.RoleOwner,
		Status:     domain.MemberActive,
		InvitedAt:  now,
		JoinedAt:   &now,
	}
	if err := s.repo.InsertMember(ctx, tx, &member); err != nil {
		return nil, err
	}

	return &team, nil
}

func (s *Service) Invite(ctx context.Context, req domain.InviteRequest) (*domain.InviteResult, error) {
	role := req.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() || role == domain.RoleOwner {
		return nil, domain.ErrInvalidRole
	}

	var result *domain.InviteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the team row makes concurrent invites against the same
		// team observe a consistent active-member count.
		team, err := s.repo.FindTeamByIDForUpdate(ctx, tx, req.TeamID)
		if err != nil {
			return err
		}
		if team == nil {
			return domain.ErrTeamNotFound
		}

		activeCount, err := s.repo.CountActiveMembers(ctx, tx, req.TeamID)
		if err != nil {
			return err
		}
		if int(activeCount) >= req.SeatCount {
			return &domain.ErrSeatLimitExceeded{SeatCount: req.SeatCount}
		}

		member, err := s.customers.FindOrCreateByEmail(ctx, tx, req.MemberEmail)
		if err != nil {
			return err
		}

		now := s.clock.Now()

		existing, err := s.repo.FindMember(ctx, tx, req.TeamID, member.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status == domain.MemberActive {
				return domain.ErrAlreadyMember
			}
			// Reactivation reuses the row so there is never a second
			// membership for the same (team, customer) pair. The member
			// keeps their previous role unless the invite names one.
			existing.Status = domain.MemberActive
			if req.Role != "" {
				existing.Role = role
			}
			existing.JoinedAt = &now
			if err := s.repo.UpdateMember(ctx, tx, existing); err != nil {
				return err
			}
			result = &domain.InviteResult{
				MemberID:    existing.ID,
				MemberEmail: member.Email,
				Outcome:     domain.OutcomeReactivated,
				TeamName:    team.Name,
				SeatsUsed:   int(activeCount) + 1,
				SeatCount:   req.SeatCount,
			}
			return nil
		}

		var invitedBy *snowflake.ID
		if inviterEmail := strings.TrimSpace(req.InviterEmail); inviterEmail != "" {
			inviter, err := s.customers.GetByEmail(ctx, inviterEmail)
			if err == nil {
				invitedBy = &inviter.ID
			}
		}

		row := domain.TeamMember{
			ID:         s.genID.Generate(),
			TeamID:     req.TeamID,
			CustomerID: member.ID,
			Role:       role,
			Status:     domain.MemberActive,
			InvitedBy:  invitedBy,
			InvitedAt:  now,
			JoinedAt:   &now,
		}
		if err := s.repo.InsertMember(ctx, tx, &row); err != nil {
			return err
		}
		result = &domain.InviteResult{
			MemberID:    row.ID,
			MemberEmail: member.Email,
			Outcome:     domain.OutcomeInvited,
			TeamName:    team.Name,
			SeatsUsed:   int(activeCount) + 1,
			SeatCount:   req.SeatCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team member invited",
		zap.Int64("team_id", int64(req.TeamID)),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("seats_used", result.SeatsUsed),
	)
	return result, nil
}

func (s *Service) Remove(ctx context.Context, req domain.RemoveRequest) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := s.repo.FindMemberByID(ctx, tx, req.TeamID, req.MemberID)
		if err != nil {
			return err
		}
		if member == nil {
			return domain.ErrMemberNotFound
		}
		if member.Role == domain.RoleOwner {
			return domain.ErrCannotRemoveOwner
		}

		member.Status = domain.MemberRemoved
		if err := s.repo.UpdateMember(ctx, tx, member); err != nil {
			return err
		}

		// Removing a member releases their device activations on the team's
		// license in the same transaction.
		if req.LicenseID != 0 {
			if err := s.activationRepo.DeactivateByCustomer(ctx, tx, req.LicenseID, member.CustomerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("team member removed",
		zap.Int64("team_id", int64(req.TeamID)),
		zap.Int64("member_id", int64(req.MemberID)),
	)
	return nil
}

func (s *Service) ListMembers(ctx context.Context, req domain.ListRequest) (*domain.MemberList, error) {
	team, err := s.repo.FindTeamByID(ctx, s.db, req.TeamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, domain.ErrTeamNotFound
	}

	rows, err := s.repo.ListMembers(ctx, s.db, req.TeamID)
	if err != nil {
		return nil, err
	}

	deviceCounts := map[snowflake.ID]int{}
	if req.LicenseID != 0 {
		deviceCounts, err = s.activationRepo.CountActiveByCustomer(ctx, s.db, req.LicenseID)
		if err != nil {
			return nil, err
		}
	}

	list := &domain.MemberList{
		TeamName:  team.Name,
		SeatCount: req.SeatCount,
		Members:   make([]domain.MemberInfo, 0, len(rows)),
	}
	for _, row := range rows {
		if row.Status == domain.MemberActive {
			list.SeatsUsed++
		}
		list.Members = append(list.Members, domain.MemberInfo{
			ID:          row.TeamMember.ID,
			CustomerID:  row.CustomerID,
			Email:       row.Email,
			Name:        row.Name,
			Role:        row.Role,
			Status:      row.Status,
			InvitedAt:   row.InvitedAt,
			JoinedAt:    row.JoinedAt,
			DevicesUsed: deviceCounts[row.CustomerID],
		})
	}
	return list, nil
}
