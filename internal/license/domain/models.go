// Package domain contains the license entity and resolver contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/plan"
)

// Status is the lifecycle state of a license. Transitions are one-way:
// active -> revoked or active -> expired, with no resurrection.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
	StatusExpired Status = "expired"
)

// License is the central entity. A license is either individual (no team,
// one implicit seat) or team-based (team reference and seat count both set);
// TeamBinding exposes that pairing as a unit so the two fields cannot be
// read independently.
type License struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	LicenseKey     string        `gorm:"column:license_key;type:text;not null;uniqueIndex:ux_licenses_key" json:"license_key"`
	Plan           plan.Type     `gorm:"type:text;not null;default:'pro'" json:"plan"`
	Status         Status        `gorm:"type:text;not null;default:'active';index" json:"status"`
	MaxActivations int           `gorm:"column:max_activations;not null;default:3" json:"max_activations"`
	TeamID         *snowflake.ID `gorm:"column:team_id;index" json:"team_id,omitempty"`
	SeatCount      int           `gorm:"column:seat_count;not null;default:1" json:"seat_count"`
	PaymentRef     string        `gorm:"column:payment_ref;type:text" json:"payment_ref,omitempty"`
	PurchasedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"purchased_at"`
	UpdatesUntil   time.Time     `gorm:"column:updates_until;not null" json:"updates_until"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (License) TableName() string { return "licenses" }

// TeamBinding is the team half of a team-based license.
type TeamBinding struct {
	TeamID    snowflake.ID
	SeatCount int
}

// TeamBinding returns the license's team linkage. ok is false for individual
// plans; a seat-based license without a team reference is a data-integrity
// anomaly the resolver reports as ErrInvalidTeamLicense.
func (l *License) TeamBinding() (TeamBinding, bool) {
	if !plan.IsSeatBased(l.Plan) || l.TeamID == nil || *l.TeamID == 0 {
		return TeamBinding{}, false
	}
	return TeamBinding{TeamID: *l.TeamID, SeatCount: l.SeatCount}, true
}
