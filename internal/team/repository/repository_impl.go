package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/team/domain"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTeam(ctx context.Context, db *gorm.DB, team *domain.Team) error {
	return db.WithContext(ctx).Create(team).Error
}

func (r *repo) FindTeamByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repo) FindTeamByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Team, error) {
	var team domain.Team
	err := dbpkg.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *repo) InsertMember(ctx context.Context, db *gorm.DB, member *domain.TeamMember) error {
	return db.WithContext(ctx).Create(member).Error
}

func (r *repo) UpdateMember(ctx context.Context, db *gorm.DB, member *domain.TeamMember) error {
	return db.WithContext(ctx).Save(member).Error
}

func (r *repo) FindMember(ctx context.Context, db *gorm.DB, teamID, customerID snowflake.ID) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := db.WithContext(ctx).
		Where("team_id = ? AND customer_id = ?", teamID, customerID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repo) FindMemberByID(ctx context.Context, db *gorm.DB, teamID, memberID snowflake.ID) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := db.WithContext(ctx).
		Where("id = ? AND team_id = ?", memberID, teamID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repo) FindActiveMember(ctx context.Context, db *gorm.DB, teamID, customerID snowflake.ID) (*domain.TeamMember, error) {
	var member domain.TeamMember
	err := db.WithContext(ctx).
		Where("team_id = ? AND customer_id = ? AND status = ?", teamID, customerID, domain.MemberActive).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, teamID snowflake.ID) ([]domain.MemberWithCustomer, error) {
	var members []domain.MemberWithCustomer
	err := db.WithContext(ctx).
		Table("team_members").
		Select("team_members.*, customers.email AS email, customers.name AS name").
		Joins("JOIN customers ON customers.id = team_members.customer_id").
		Where("team_members.team_id = ?", teamID).
		Order("team_members.invited_at asc, team_members.id asc").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) CountActiveMembers(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.TeamMember{}).
		Where("team_id = ? AND status = ?", teamID, domain.MemberActive).
		Count(&count).Error
	return count, err
}
