package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/activation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, activation *domain.Activation) error {
	return db.WithContext(ctx).Create(activation).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, activation *domain.Activation) error {
	return db.WithContext(ctx).Save(activation).Error
}

func (r *repo) FindActiveByDevice(ctx context.Context, db *gorm.DB, licenseID snowflake.ID, deviceID string) (*domain.Activation, error) {
	var activation domain.Activation
	err := db.WithContext(ctx).
		Where("license_id = ? AND device_id = ? AND is_active = ?", licenseID, deviceID, true).
		First(&activation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

func (r *repo) FindActiveByInstance(ctx context.Context, db *gorm.DB, instanceID string) (*domain.Activation, error) {
	var activation domain.Activation
	err := db.WithContext(ctx).
		Where("instance_id = ? AND is_active = ?", instanceID, true).
		First(&activation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activation, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Activation{}).
		Where("license_id = ? AND is_active = ?", licenseID, true).
		Count(&count).Error
	return count, err
}

func (r *repo) CountActiveByCustomer(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (map[snowflake.ID]int, error) {
	var rows []struct {
		CustomerID snowflake.ID
		Devices    int
	}
	err := db.WithContext(ctx).
		Model(&domain.Activation{}).
		Select("customer_id, COUNT(*) AS devices").
		Where("license_id = ? AND is_active = ? AND customer_id IS NOT NULL", licenseID, true).
		Group("customer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[snowflake.ID]int, len(rows))
	for _, row := range rows {
		counts[row.CustomerID] = row.Devices
	}
	return counts, nil
}

func (r *repo) DeactivateByCustomer(ctx context.Context, db *gorm.DB, licenseID, customerID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Activation{}).
		Where("license_id = ? AND customer_id = ? AND is_active = ?", licenseID, customerID, true).
		Update("is_active", false).Error
}
