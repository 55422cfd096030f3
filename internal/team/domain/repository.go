package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertTeam(ctx context.Context, db *gorm.DB, team *Team) error
	FindTeamByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Team, error)
	// FindTeamByIDForUpdate locks the team row so concurrent seat-count
	// checks on the same team serialize.
	FindTeamByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Team, error)
	InsertMember(ctx context.Context, db *gorm.DB, member *TeamMember) error
	UpdateMember(ctx context.Context, db *gorm.DB, member *TeamMember) error
	FindMember(ctx context.Context, db *gorm.DB, teamID, customerID snowflake.ID) (*TeamMember, error)
	FindMemberByID(ctx context.Context, db *gorm.DB, teamID, memberID snowflake.ID) (*TeamMember, error)
	FindActiveMember(ctx context.Context, db *gorm.DB, teamID, customerID snowflake.ID) (*TeamMember, error)
	ListMembers(ctx context.Context, db *gorm.DB, teamID snowflake.ID) ([]MemberWithCustomer, error)
	CountActiveMembers(ctx context.Context, db *gorm.DB, teamID snowflake.ID) (int64, error)
}
