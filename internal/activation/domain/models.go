// Package domain contains persistence models for the activation ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Activation binds one license to one device. There is at most one active
// row per (license, device_id) pair; repeat activations update the row in
// place. Rows are never hard-deleted, deactivation flips is_active.
type Activation struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	LicenseID snowflake.ID `gorm:"not null;index" json:"license_id"`
	// CustomerID records which team member activated the device, so removing
	// the member can release their devices. Empty for individual plans
	// activated without an email.
	CustomerID      *snowflake.ID `gorm:"column:customer_id;index" json:"customer_id,omitempty"`
	InstanceID      string        `gorm:"column:instance_id;type:text;not null;uniqueIndex:ux_activations_instance" json:"instance_id"`
	DeviceID        string        `gorm:"column:device_id;type:text;not null;index" json:"device_id"`
	DeviceName      string        `gorm:"column:device_name;type:text" json:"device_name,omitempty"`
	OS              string        `gorm:"column:os;type:text" json:"os,omitempty"`
	AppVersion      string        `gorm:"column:app_version;type:text" json:"app_version,omitempty"`
	ActivatedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"activated_at"`
	LastValidatedAt time.Time     `gorm:"column:last_validated_at;not null;default:CURRENT_TIMESTAMP" json:"last_validated_at"`
	IsActive        bool          `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

// TableName sets the database table name.
func (Activation) TableName() string { return "activations" }
