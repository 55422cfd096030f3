// Package domain contains persistence models for the team service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role of a member inside a team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// MemberStatus is the lifecycle state of a team membership.
type MemberStatus string

const (
	MemberPending MemberStatus = "pending"
	MemberActive  MemberStatus = "active"
	MemberRemoved MemberStatus = "removed"
)

// Team is a named group owning one or more team-plan licenses. It has
// exactly one owner.
type Team struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null" json:"slug"`
	OwnerID   snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// TeamMember joins a customer to a team. There is at most one row per
// (team, customer) pair; reactivation reuses the row instead of inserting a
// duplicate.
type TeamMember struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	TeamID     snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_team_members_team_customer,priority:1" json:"team_id"`
	CustomerID snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_team_members_team_customer,priority:2" json:"customer_id"`
	Role       Role          `gorm:"type:text;not null;default:'member'" json:"role"`
	Status     MemberStatus  `gorm:"type:text;not null;default:'pending';index" json:"status"`
	InvitedBy  *snowflake.ID `gorm:"column:invited_by" json:"invited_by,omitempty"`
	InvitedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"invited_at"`
	JoinedAt   *time.Time    `gorm:"column:joined_at" json:"joined_at,omitempty"`
}

// TableName sets the database table name.
func (TeamMember) TableName() string { return "team_members" }

// MemberWithCustomer is a TeamMember row joined with its customer identity.
type MemberWithCustomer struct {
	TeamMember
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
