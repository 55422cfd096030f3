package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/clock"
	"github.com/smallbiznis/keygate/internal/customer/domain"
	"github.com/smallbiznis/keygate/internal/customer/repository"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCustomerService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	conn, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, conn
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@EXAMPLE.com \n"))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.example.co"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("userexample.com"))
	assert.False(t, ValidEmail("user @example.com"))
	assert.False(t, ValidEmail(""))
}

func TestFindOrCreateByEmail(t *testing.T) {
	svc, conn := newCustomerService(t)
	ctx := context.Background()

	created, err := svc.FindOrCreateByEmail(ctx, conn, "User@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", created.Email)

	// A differently cased address resolves to the same row.
	found, err := svc.FindOrCreateByEmail(ctx, conn, "USER@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	var count int64
	require.NoError(t, conn.Model(&domain.Customer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateByEmailRejectsInvalid(t *testing.T) {
	svc, conn := newCustomerService(t)

	_, err := svc.FindOrCreateByEmail(context.Background(), conn, "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestCreateBackfillsName(t *testing.T) {
	svc, _ := newCustomerService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateCustomerRequest{Email: "buyer@example.com"})
	require.NoError(t, err)
	assert.Empty(t, first.Name)

	second, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Email: "buyer@example.com",
		Name:  "Buyer Name",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Buyer Name", second.Name)
}

func TestGetByEmail(t *testing.T) {
	svc, _ := newCustomerService(t)
	ctx := context.Background()

	_, err := svc.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{Email: "buyer@example.com"})
	require.NoError(t, err)

	found, err := svc.GetByEmail(ctx, "Buyer@Example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}
