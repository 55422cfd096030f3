// Package domain contains persistence models for inbound payment webhooks.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// WebhookEvent is a received payment-provider event. Rows are kept for
// dedupe and for replaying failed fulfillments.
type WebhookEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Provider    string            `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_event,priority:1" json:"provider"`
	EventID     string            `gorm:"column:event_id;type:text;not null;uniqueIndex:ux_webhook_events_event,priority:2" json:"event_id"`
	EventType   string            `gorm:"column:event_type;type:text;not null" json:"event_type"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb" json:"payload"`
	Processed   bool              `gorm:"not null;default:false" json:"processed"`
	ProcessedAt *time.Time        `gorm:"column:processed_at" json:"processed_at,omitempty"`
	LastError   string            `gorm:"column:last_error;type:text" json:"last_error,omitempty"`
	ReceivedAt  time.Time         `gorm:"column:received_at;not null;default:CURRENT_TIMESTAMP" json:"received_at"`
}

// TableName sets the database table name.
func (WebhookEvent) TableName() string { return "webhook_events" }
