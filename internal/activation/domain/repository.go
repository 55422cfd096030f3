package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activation *Activation) error
	Update(ctx context.Context, db *gorm.DB, activation *Activation) error
	FindActiveByDevice(ctx context.Context, db *gorm.DB, licenseID snowflake.ID, deviceID string) (*Activation, error)
	FindActiveByInstance(ctx context.Context, db *gorm.DB, instanceID string) (*Activation, error)
	CountActive(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (int64, error)
	CountActiveByCustomer(ctx context.Context, db *gorm.DB, licenseID snowflake.ID) (map[snowflake.ID]int, error)
	// DeactivateByCustomer releases every active device the customer holds on
	// the license. Used when a team member is removed.
	DeactivateByCustomer(ctx context.Context, db *gorm.DB, licenseID, customerID snowflake.ID) error
}
