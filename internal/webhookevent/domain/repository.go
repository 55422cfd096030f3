package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists webhook events.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *WebhookEvent) error
	Update(ctx context.Context, db *gorm.DB, event *WebhookEvent) error
	FindByEventID(ctx context.Context, db *gorm.DB, provider, eventID string) (*WebhookEvent, error)
	ListFailed(ctx context.Context, db *gorm.DB, limit int) ([]WebhookEvent, error)
}
