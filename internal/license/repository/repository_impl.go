package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/license/domain"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, license *domain.License) error {
	return db.WithContext(ctx).Create(license).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, license *domain.License) error {
	return db.WithContext(ctx).Save(license).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.License, error) {
	var license domain.License
	err := db.WithContext(ctx).
		Where("license_key = ?", key).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *repo) FindByPaymentRef(ctx context.Context, db *gorm.DB, paymentRef string) (*domain.License, error) {
	var license domain.License
	err := db.WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.License, error) {
	var license domain.License
	err := dbpkg.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

