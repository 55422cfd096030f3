package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/clock"
	"github.com/smallbiznis/keygate/internal/customer/domain"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lowercases and trims an address. Emails compare
// case-insensitively everywhere, so normalization happens once, at the edge.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail is the basic syntactic gate applied before any lookup.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) FindOrCreateByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Customer, error) {
	normalized := NormalizeEmail(email)
	if !ValidEmail(normalized) {
		return nil, domain.ErrInvalidEmail
	}
	if db == nil {
		db = s.db
	}

	existing, err := s.repo.FindByEmail(ctx, db, normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Email:     normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, db, &customer); err != nil {
		// Lost a race to another request creating the same address; the
		// unique index makes the winner authoritative.
		if dbpkg.IsDuplicateKeyErr(err) {
			return s.repo.FindByEmail(ctx, db, normalized)
		}
		return nil, err
	}
	return &customer, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	normalized := NormalizeEmail(req.Email)
	if !ValidEmail(normalized) {
		return nil, domain.ErrInvalidEmail
	}

	customer, err := s.FindOrCreateByEmail(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name != "" && customer.Name != name {
		customer.Name = name
		customer.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, customer); err != nil {
			return nil, err
		}
	}
	return customer, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	normalized := NormalizeEmail(email)
	if !ValidEmail(normalized) {
		return nil, domain.ErrInvalidEmail
	}
	customer, err := s.repo.FindByEmail(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}
