package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists releases.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, release *Release) error
	Update(ctx context.Context, db *gorm.DB, release *Release) error
	FindLatest(ctx context.Context, db *gorm.DB) (*Release, error)
	FindByVersion(ctx context.Context, db *gorm.DB, version string) (*Release, error)
	ClearLatest(ctx context.Context, db *gorm.DB) error
}
