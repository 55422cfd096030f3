package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, license *License) error
	Update(ctx context.Context, db *gorm.DB, license *License) error
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*License, error)
	// FindByPaymentRef backs order idempotency: one payment issues at most
	// one license no matter how often the webhook is delivered.
	FindByPaymentRef(ctx context.Context, db *gorm.DB, paymentRef string) (*License, error)
	// FindByIDForUpdate locks the license row; the activation ledger uses it
	// to serialize cap checks per license.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*License, error)
}
