package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/plan"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
)

type IssueRequest struct {
	Email string
	Name  string
	Plan  plan.Type
	// SeatCount is validated against plan bounds; zero selects the plan
	// default. Ignored for individual plans.
	SeatCount  int
	TeamName   string
	PaymentRef string
}

type IssueResult struct {
	LicenseID    snowflake.ID  `json:"license_id"`
	LicenseKey   string        `json:"license_key"`
	Plan         plan.Type     `json:"plan"`
	SeatCount    int           `json:"seat_count"`
	TeamID       *snowflake.ID `json:"team_id,omitempty"`
	UpdatesUntil time.Time     `json:"updates_until"`
}

type ActivateRequest struct {
	LicenseKey string
	// Email identifies the caller; required for team plans, optional for
	// individual ones.
	Email      string
	DeviceID   string
	DeviceName string
	OS         string
	AppVersion string
}

// TeamInfo summarizes the caller's team standing at activation time.
type TeamInfo struct {
	TeamID    snowflake.ID    `json:"team_id"`
	Name      string          `json:"name"`
	SeatCount int             `json:"seat_count"`
	SeatsUsed int             `json:"seats_used"`
	Role      teamdomain.Role `json:"role"`
}

// ResolvedActivation is assembled in one pass so the caller never needs a
// second query to render a consistent view.
type ResolvedActivation struct {
	InstanceID       string    `json:"instance_id"`
	LicenseKey       string    `json:"license_key"`
	Plan             plan.Type `json:"plan"`
	DevicesUsed      int       `json:"devices_used"`
	DevicesAllowed   int       `json:"devices_allowed"`
	UpdatesAvailable bool      `json:"updates_available"`
	UpdatesUntil     time.Time `json:"updates_until"`
	TeamInfo         *TeamInfo `json:"team_info,omitempty"`
}

type InviteMemberRequest struct {
	LicenseKey   string
	MemberEmail  string
	Role         teamdomain.Role
	InviterEmail string
}

type RemoveMemberRequest struct {
	LicenseKey string
	MemberID   snowflake.ID
}

type Service interface {
	// Issue generates a key, resolves activation caps from plan policy, and
	// for seat-based plans creates the team with the purchaser as owner.
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)
	// ResolveForActivation is the activation entry point: key lookup, status
	// check, team membership validation for seat-based plans, then device
	// binding through the activation ledger.
	ResolveForActivation(ctx context.Context, req ActivateRequest) (*ResolvedActivation, error)
	Deactivate(ctx context.Context, instanceID string) error
	InviteMember(ctx context.Context, req InviteMemberRequest) (*teamdomain.InviteResult, error)
	RemoveMember(ctx context.Context, req RemoveMemberRequest) error
	ListMembers(ctx context.Context, licenseKey string) (*teamdomain.MemberList, error)
	Revoke(ctx context.Context, licenseKey string) error
	Expire(ctx context.Context, licenseKey string) error
	GetByKey(ctx context.Context, licenseKey string) (*License, error)
}

var (
	ErrKeyNotFound        = errors.New("key_not_found")
	ErrInvalidKeyFormat   = errors.New("invalid_key_format")
	ErrNotATeamMember     = errors.New("not_a_team_member")
	ErrInvalidTeamLicense = errors.New("invalid_team_license")
	ErrInvalidPlan        = errors.New("invalid_plan")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
)

// ErrNotActive reports a license that exists but is revoked or expired. It
// carries the actual status so the two are distinguishable to the caller.
type ErrNotActive struct {
	Status Status
}

func (e *ErrNotActive) Error() string {
	return fmt.Sprintf("license_not_active: license is %s", e.Status)
}
