package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	"gorm.io/gorm"
)

// InviteOutcome distinguishes a fresh membership from a reactivated one.
type InviteOutcome string

const (
	OutcomeInvited     InviteOutcome = "invited"
	OutcomeReactivated InviteOutcome = "reactivated"
)

type InviteRequest struct {
	TeamID       snowflake.ID
	SeatCount    int
	MemberEmail  string
	Role         Role // defaults to member
	InviterEmail string
}

type InviteResult struct {
	MemberID    snowflake.ID
	MemberEmail string
	Outcome     InviteOutcome
	TeamName    string
	SeatsUsed   int
	SeatCount   int
}

type RemoveRequest struct {
	TeamID snowflake.ID
	// LicenseID scopes the cascade that deactivates the removed member's
	// device activations.
	LicenseID snowflake.ID
	MemberID  snowflake.ID
}

type ListRequest struct {
	TeamID    snowflake.ID
	LicenseID snowflake.ID
	SeatCount int
}

type MemberInfo struct {
	ID          snowflake.ID `json:"id"`
	CustomerID  snowflake.ID `json:"customer_id"`
	Email       string       `json:"email"`
	Name        string       `json:"name,omitempty"`
	Role        Role         `json:"role"`
	Status      MemberStatus `json:"status"`
	InvitedAt   time.Time    `json:"invited_at"`
	JoinedAt    *time.Time   `json:"joined_at,omitempty"`
	DevicesUsed int          `json:"devices_used"`
}

// MemberList carries every member (any status) plus current seat usage, so a
// caller can render "X/Y seats used" without a second round trip.
type MemberList struct {
	TeamName  string       `json:"team_name"`
	SeatCount int          `json:"seat_count"`
	SeatsUsed int          `json:"seats_used"`
	Members   []MemberInfo `json:"members"`
}

type Service interface {
	// CreateWithOwner creates a team and its owner membership inside the
	// caller's transaction. Used at license issuance.
	CreateWithOwner(ctx context.Context, tx *gorm.DB, name string, owner *customerdomain.Customer) (*Team, error)
	Invite(ctx context.Context, req InviteRequest) (*InviteResult, error)
	Remove(ctx context.Context, req RemoveRequest) error
	ListMembers(ctx context.Context, req ListRequest) (*MemberList, error)
}

var (
	ErrTeamNotFound      = errors.New("team_not_found")
	ErrMemberNotFound    = errors.New("member_not_found")
	ErrAlreadyMember     = errors.New("already_member")
	ErrCannotRemoveOwner = errors.New("cannot_remove_owner")
	ErrInvalidRole       = errors.New("invalid_role")
)

// ErrSeatLimitExceeded reports a full team. It carries the seat count so the
// caller can render a precise message.
type ErrSeatLimitExceeded struct {
	SeatCount int
}

func (e *ErrSeatLimitExceeded) Error() string {
	return fmt.Sprintf("seat_limit_exceeded: all %d seats are in use", e.SeatCount)
}
