package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/smallbiznis/keygate/internal/release/domain"
)

type repository struct{}

// Provide constructs the release repository.
func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, db *gorm.DB, release *domain.Release) error {
	return db.WithContext(ctx).Create(release).Error
}

func (r *repository) Update(ctx context.Context, db *gorm.DB, release *domain.Release) error {
	return db.WithContext(ctx).Save(release).Error
}

func (r *repository) FindLatest(ctx context.Context, db *gorm.DB) (*domain.Release, error) {
	var release domain.Release
	err := db.WithContext(ctx).
		Where("is_latest = ?", true).
		Order("released_at DESC").
		First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *repository) FindByVersion(ctx context.Context, db *gorm.DB, version string) (*domain.Release, error) {
	var release domain.Release
	err := db.WithContext(ctx).Where("version = ?", version).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *repository) ClearLatest(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Model(&domain.Release{}).
		Where("is_latest = ?", true).
		Update("is_latest", false).Error
}
