// Package domain contains persistence models for the customer service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is an identity record keyed by email. Rows are created on first
// purchase or on team invite and are never deleted, only referenced.
type Customer struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	Email      string       `gorm:"type:text;not null;uniqueIndex:ux_customers_email" json:"email"`
	Name       string       `gorm:"type:text" json:"name,omitempty"`
	AuthRef    string       `gorm:"column:auth_ref;type:text" json:"auth_ref,omitempty"`
	PaymentRef string       `gorm:"column:payment_ref;type:text" json:"payment_ref,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
