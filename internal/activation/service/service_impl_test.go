package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/keygate/internal/activation/domain"
	"github.com/smallbiznis/keygate/internal/activation/repository"
	"github.com/smallbiznis/keygate/internal/clock"
	licensedomain "github.com/smallbiznis/keygate/internal/license/domain"
	licenserepository "github.com/smallbiznis/keygate/internal/license/repository"
	"github.com/smallbiznis/keygate/internal/plan"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type activationFixture struct {
	db      *gorm.DB
	clock   *clock.FakeClock
	svc     domain.Service
	license licensedomain.License
}

func newActivationFixture(t *testing.T, maxActivations int) *activationFixture {
	t.Helper()

	conn, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&licensedomain.License{}, &domain.Activation{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	license := licensedomain.License{
		ID:             node.Generate(),
		CustomerID:     node.Generate(),
		LicenseKey:     "DPRO-ABCD-EFGH-JKLM-NPQR",
		Plan:           plan.Pro,
		Status:         licensedomain.StatusActive,
		MaxActivations: maxActivations,
		SeatCount:      1,
		PurchasedAt:    fakeClock.Now(),
		UpdatesUntil:   fakeClock.Now().AddDate(1, 0, 0),
		CreatedAt:      fakeClock.Now(),
	}
	require.NoError(t, conn.Create(&license).Error)

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fakeClock,
		Repo:        repository.Provide(),
		LicenseRepo: licenserepository.Provide(),
	})

	return &activationFixture{db: conn, clock: fakeClock, svc: svc, license: license}
}

func (f *activationFixture) activate(ctx context.Context, deviceID string) (*domain.ActivateResult, error) {
	return f.svc.Activate(ctx, domain.ActivateRequest{
		LicenseID:      f.license.ID,
		MaxActivations: f.license.MaxActivations,
		DeviceID:       deviceID,
		DeviceName:     "MacBook Pro",
		OS:             "darwin",
		AppVersion:     "2.4.0",
	})
}

func TestActivateFirstDevice(t *testing.T) {
	f := newActivationFixture(t, 3)
	ctx := context.Background()

	result, err := f.activate(ctx, "device-1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.InstanceID)
	assert.Equal(t, 1, result.DevicesUsed)
	assert.False(t, result.Existing)
}

func TestActivateSameDeviceIsIdempotent(t *testing.T) {
	f := newActivationFixture(t, 3)
	ctx := context.Background()

	first, err := f.activate(ctx, "device-1")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)

	second, err := f.svc.Activate(ctx, domain.ActivateRequest{
		LicenseID:      f.license.ID,
		MaxActivations: f.license.MaxActivations,
		DeviceID:       "device-1",
		DeviceName:     "Renamed MacBook",
		AppVersion:     "2.5.0",
	})
	require.NoError(t, err)
	assert.Equal(t, first.InstanceID, second.InstanceID)
	assert.Equal(t, 1, second.DevicesUsed)
	assert.True(t, second.Existing)

	var row domain.Activation
	require.NoError(t, f.db.Where("instance_id = ?", first.InstanceID).First(&row).Error)
	assert.Equal(t, "Renamed MacBook", row.DeviceName)
	assert.Equal(t, "2.5.0", row.AppVersion)
	assert.WithinDuration(t, f.clock.Now(), row.LastValidatedAt, time.Second)
}

func TestActivateLimitExceeded(t *testing.T) {
	f := newActivationFixture(t, 3)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		result, err := f.activate(ctx, fmt.Sprintf("device-%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, result.DevicesUsed)
	}

	_, err := f.activate(ctx, "device-4")
	var limitErr *domain.ErrLimitExceeded
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)
}

func TestDeactivateFreesSlot(t *testing.T) {
	f := newActivationFixture(t, 2)
	ctx := context.Background()

	first, err := f.activate(ctx, "device-1")
	require.NoError(t, err)
	_, err = f.activate(ctx, "device-2")
	require.NoError(t, err)

	_, err = f.activate(ctx, "device-3")
	var limitErr *domain.ErrLimitExceeded
	require.ErrorAs(t, err, &limitErr)

	require.NoError(t, f.svc.Deactivate(ctx, first.InstanceID))

	result, err := f.activate(ctx, "device-3")
	require.NoError(t, err)
	assert.Equal(t, 2, result.DevicesUsed)

	// The old row is kept for history, only its active flag flips.
	var row domain.Activation
	require.NoError(t, f.db.Where("instance_id = ?", first.InstanceID).First(&row).Error)
	assert.False(t, row.IsActive)
}

func TestReactivateAfterDeactivateIssuesNewInstance(t *testing.T) {
	f := newActivationFixture(t, 3)
	ctx := context.Background()

	first, err := f.activate(ctx, "device-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Deactivate(ctx, first.InstanceID))

	second, err := f.activate(ctx, "device-1")
	require.NoError(t, err)
	assert.NotEqual(t, first.InstanceID, second.InstanceID)
	assert.False(t, second.Existing)
}

func TestActivateRejectsEmptyDevice(t *testing.T) {
	f := newActivationFixture(t, 3)

	_, err := f.activate(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidDevice)
}

func TestDeactivateUnknownInstance(t *testing.T) {
	f := newActivationFixture(t, 3)

	err := f.svc.Deactivate(context.Background(), "no-such-instance")
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)

	err = f.svc.Deactivate(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInstanceNotFound)
}

func TestCountActive(t *testing.T) {
	f := newActivationFixture(t, 5)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := f.activate(ctx, fmt.Sprintf("device-%d", i))
		require.NoError(t, err)
	}

	count, err := f.svc.CountActive(ctx, f.license.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestActivateConcurrentRespectsLimit(t *testing.T) {
	f := newActivationFixture(t, 3)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.activate(ctx, fmt.Sprintf("device-%d", i))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var limitErr *domain.ErrLimitExceeded
		assert.ErrorAs(t, err, &limitErr)
	}
	assert.Equal(t, 3, succeeded)

	count, err := f.svc.CountActive(ctx, f.license.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
