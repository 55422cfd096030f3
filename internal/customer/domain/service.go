package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Email string
	Name  string
}

type Service interface {
	// FindOrCreateByEmail resolves the customer for a normalized email,
	// creating the row on first sight. Invitation and first activation may
	// arrive in either order, so both paths go through here.
	FindOrCreateByEmail(ctx context.Context, db *gorm.DB, email string) (*Customer, error)
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}

var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNotFound     = errors.New("not_found")
)
