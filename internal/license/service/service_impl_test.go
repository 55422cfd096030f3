package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	activationdomain "github.com/smallbiznis/keygate/internal/activation/domain"
	activationrepository "github.com/smallbiznis/keygate/internal/activation/repository"
	activationservice "github.com/smallbiznis/keygate/internal/activation/service"
	"github.com/smallbiznis/keygate/internal/clock"
	customerdomain "github.com/smallbiznis/keygate/internal/customer/domain"
	customerrepository "github.com/smallbiznis/keygate/internal/customer/repository"
	customerservice "github.com/smallbiznis/keygate/internal/customer/service"
	"github.com/smallbiznis/keygate/internal/keygen"
	"github.com/smallbiznis/keygate/internal/license/domain"
	"github.com/smallbiznis/keygate/internal/license/repository"
	"github.com/smallbiznis/keygate/internal/plan"
	"github.com/smallbiznis/keygate/internal/providers/email"
	teamdomain "github.com/smallbiznis/keygate/internal/team/domain"
	teamrepository "github.com/smallbiznis/keygate/internal/team/repository"
	teamservice "github.com/smallbiznis/keygate/internal/team/service"
	dbpkg "github.com/smallbiznis/keygate/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type licenseFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newLicenseFixture(t *testing.T) *licenseFixture {
	t.Helper()

	conn, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&customerdomain.Customer{},
		&teamdomain.Team{},
		&teamdomain.TeamMember{},
		&domain.License{},
		&activationdomain.Activation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	customerRepo := customerrepository.Provide()
	teamRepo := teamrepository.Provide()
	activationRepo := activationrepository.Provide()
	licenseRepo := repository.Provide()

	customers := customerservice.New(customerservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  customerRepo,
	})
	teams := teamservice.New(teamservice.Params{
		DB:             conn,
		Log:            log,
		GenID:          node,
		Clock:          fakeClock,
		Repo:           teamRepo,
		Customers:      customers,
		ActivationRepo: activationRepo,
	})
	activations := activationservice.New(activationservice.Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        activationRepo,
		LicenseRepo: licenseRepo,
	})

	svc := New(Params{
		DB:          conn,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        licenseRepo,
		TeamRepo:    teamRepo,
		Teams:       teams,
		Customers:   customers,
		Activations: activations,
		Email:       &email.NoOpProvider{},
	})

	return &licenseFixture{db: conn, node: node, clock: fakeClock, svc: svc}
}

func (f *licenseFixture) issuePro(t *testing.T) *domain.IssueResult {
	t.Helper()
	result, err := f.svc.Issue(context.Background(), domain.IssueRequest{
		Email: "buyer@example.com",
		Name:  "Buyer",
		Plan:  plan.Pro,
	})
	require.NoError(t, err)
	return result
}

func (f *licenseFixture) issueTeam(t *testing.T, seats int) *domain.IssueResult {
	t.Helper()
	result, err := f.svc.Issue(context.Background(), domain.IssueRequest{
		Email:     "owner@example.com",
		Name:      "Owner",
		Plan:      plan.Team,
		SeatCount: seats,
		TeamName:  "Acme Design",
	})
	require.NoError(t, err)
	return result
}

func TestIssuePro(t *testing.T) {
	f := newLicenseFixture(t)

	result := f.issuePro(t)
	assert.True(t, keygen.ValidFormat(result.LicenseKey))
	assert.True(t, strings.HasPrefix(result.LicenseKey, "DPRO-"))
	assert.Equal(t, plan.Pro, result.Plan)
	assert.Equal(t, 1, result.SeatCount)
	assert.Nil(t, result.TeamID)
	assert.Equal(t, f.clock.Now().AddDate(1, 0, 0), result.UpdatesUntil)

	var row domain.License
	require.NoError(t, f.db.First(&row, "id = ?", result.LicenseID).Error)
	assert.Equal(t, domain.StatusActive, row.Status)
	assert.Equal(t, 3, row.MaxActivations)
}

func TestIssueTeamCreatesTeamWithOwner(t *testing.T) {
	f := newLicenseFixture(t)

	result := f.issueTeam(t, 0)
	assert.True(t, strings.HasPrefix(result.LicenseKey, "DTEAM-"))
	assert.Equal(t, 5, result.SeatCount, "zero seats selects the plan default")
	require.NotNil(t, result.TeamID)

	var row domain.License
	require.NoError(t, f.db.First(&row, "id = ?", result.LicenseID).Error)
	assert.Equal(t, 10, row.MaxActivations, "two activations per seat")

	var team teamdomain.Team
	require.NoError(t, f.db.First(&team, "id = ?", *result.TeamID).Error)
	assert.Equal(t, "Acme Design", team.Name)

	var member teamdomain.TeamMember
	require.NoError(t, f.db.Where("team_id = ?", team.ID).First(&member).Error)
	assert.Equal(t, teamdomain.RoleOwner, member.Role)
	assert.Equal(t, teamdomain.MemberActive, member.Status)
}

func TestIssueSamePaymentRefReturnsExistingLicense(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	first, err := f.svc.Issue(ctx, domain.IssueRequest{
		Email:      "buyer@example.com",
		Name:       "Buyer",
		Plan:       plan.Pro,
		PaymentRef: "ord_once",
	})
	require.NoError(t, err)

	second, err := f.svc.Issue(ctx, domain.IssueRequest{
		Email:      "buyer@example.com",
		Name:       "Buyer",
		Plan:       plan.Pro,
		PaymentRef: "ord_once",
	})
	require.NoError(t, err)
	assert.Equal(t, first.LicenseID, second.LicenseID)
	assert.Equal(t, first.LicenseKey, second.LicenseKey)

	var count int64
	require.NoError(t, f.db.Model(&domain.License{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "one payment reference, one license")
}

func TestIssueRejectsUnknownPlan(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.svc.Issue(context.Background(), domain.IssueRequest{
		Email: "buyer@example.com",
		Plan:  plan.Type("free"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestIssueRejectsSeatCountOutOfBounds(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.svc.Issue(context.Background(), domain.IssueRequest{
		Email:     "owner@example.com",
		Plan:      plan.Team,
		SeatCount: 2,
	})
	var seatErr *plan.ErrInvalidSeatCount
	require.ErrorAs(t, err, &seatErr)
	assert.Equal(t, 3, seatErr.Min)
	assert.Equal(t, 100, seatErr.Max)
}

func TestResolveForActivationPro(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)

	resolved, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		DeviceID:   "device-1",
		DeviceName: "MacBook Pro",
		OS:         "darwin",
		AppVersion: "2.4.0",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resolved.InstanceID)
	assert.Equal(t, issued.LicenseKey, resolved.LicenseKey)
	assert.Equal(t, plan.Pro, resolved.Plan)
	assert.Equal(t, 1, resolved.DevicesUsed)
	assert.Equal(t, 3, resolved.DevicesAllowed)
	assert.True(t, resolved.UpdatesAvailable)
	assert.WithinDuration(t, issued.UpdatesUntil, resolved.UpdatesUntil, time.Second)
	assert.Nil(t, resolved.TeamInfo)
}

func TestResolveForActivationNormalizesKey(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)

	resolved, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: "  " + strings.ToLower(issued.LicenseKey) + " ",
		DeviceID:   "device-1",
	})
	require.NoError(t, err)
	assert.Equal(t, issued.LicenseKey, resolved.LicenseKey)
}

func TestResolveForActivationTeamMember(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issueTeam(t, 5)

	resolved, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		Email:      "owner@example.com",
		DeviceID:   "device-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.TeamInfo)
	assert.Equal(t, *issued.TeamID, resolved.TeamInfo.TeamID)
	assert.Equal(t, "Acme Design", resolved.TeamInfo.Name)
	assert.Equal(t, 5, resolved.TeamInfo.SeatCount)
	assert.Equal(t, 1, resolved.TeamInfo.SeatsUsed)
	assert.Equal(t, teamdomain.RoleOwner, resolved.TeamInfo.Role)
	assert.Equal(t, 10, resolved.DevicesAllowed)
}

func TestResolveForActivationRejectsNonMember(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issueTeam(t, 5)

	_, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		Email:      "stranger@example.com",
		DeviceID:   "device-1",
	})
	assert.ErrorIs(t, err, domain.ErrNotATeamMember)
}

func TestResolveForActivationInvitedMember(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issueTeam(t, 5)

	_, err := f.svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		LicenseKey:  issued.LicenseKey,
		MemberEmail: "designer@example.com",
	})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		Email:      "designer@example.com",
		DeviceID:   "device-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resolved.TeamInfo)
	assert.Equal(t, 2, resolved.TeamInfo.SeatsUsed)
	assert.Equal(t, teamdomain.RoleMember, resolved.TeamInfo.Role)
}

func TestResolveForActivationKeyErrors(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: "not-a-key",
		DeviceID:   "device-1",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKeyFormat)

	_, err = f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: "DPRO-AAAA-BBBB-CCCC-DDDD",
		DeviceID:   "device-1",
	})
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestResolveForActivationNotActive(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Revoke(ctx, issued.LicenseKey))

	_, err := f.svc.ResolveForActivation(ctx, domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		DeviceID:   "device-1",
	})
	var notActive *domain.ErrNotActive
	require.ErrorAs(t, err, &notActive)
	assert.Equal(t, domain.StatusRevoked, notActive.Status)
}

func TestResolveForActivationExpiredUpdatesWindow(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)

	// Past the updates window the license still activates, it just stops
	// receiving new versions.
	f.clock.Advance(366 * 24 * time.Hour)

	resolved, err := f.svc.ResolveForActivation(context.Background(), domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		DeviceID:   "device-1",
	})
	require.NoError(t, err)
	assert.False(t, resolved.UpdatesAvailable)
}

func TestResolveForActivationBlankDeviceConsumesSlot(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)
	ctx := context.Background()

	first, err := f.svc.ResolveForActivation(ctx, domain.ActivateRequest{LicenseKey: issued.LicenseKey})
	require.NoError(t, err)
	second, err := f.svc.ResolveForActivation(ctx, domain.ActivateRequest{LicenseKey: issued.LicenseKey})
	require.NoError(t, err)

	assert.NotEqual(t, first.InstanceID, second.InstanceID)
	assert.Equal(t, 2, second.DevicesUsed)
}

func TestTeamOperationsRejectIndividualLicense(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issuePro(t)
	ctx := context.Background()

	_, err := f.svc.InviteMember(ctx, domain.InviteMemberRequest{
		LicenseKey:  issued.LicenseKey,
		MemberEmail: "member@example.com",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTeamLicense)

	_, err = f.svc.ListMembers(ctx, issued.LicenseKey)
	assert.ErrorIs(t, err, domain.ErrInvalidTeamLicense)

	err = f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		LicenseKey: issued.LicenseKey,
		MemberID:   f.node.Generate(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTeamLicense)
}

func TestInviteMemberValidatesEmail(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issueTeam(t, 5)

	_, err := f.svc.InviteMember(context.Background(), domain.InviteMemberRequest{
		LicenseKey:  issued.LicenseKey,
		MemberEmail: "not-an-email",
	})
	assert.ErrorIs(t, err, customerdomain.ErrInvalidEmail)
}

func TestRemoveMemberReleasesDevices(t *testing.T) {
	f := newLicenseFixture(t)
	issued := f.issueTeam(t, 5)
	ctx := context.Background()

	invited, err := f.svc.InviteMember(ctx, domain.InviteMemberRequest{
		LicenseKey:  issued.LicenseKey,
		MemberEmail: "designer@example.com",
	})
	require.NoError(t, err)

	_, err = f.svc.ResolveForActivation(ctx, domain.ActivateRequest{
		LicenseKey: issued.LicenseKey,
		Email:      "designer@example.com",
		DeviceID:   "device-1",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{
		LicenseKey: issued.LicenseKey,
		MemberID:   invited.MemberID,
	}))

	var active int64
	require.NoError(t, f.db.Model(&activationdomain.Activation{}).
		Where("license_id = ? AND is_active = ?", issued.LicenseID, true).
		Count(&active).Error)
	assert.EqualValues(t, 0, active)

	list, err := f.svc.ListMembers(ctx, issued.LicenseKey)
	require.NoError(t, err)
	assert.Equal(t, 1, list.SeatsUsed)
}

func TestStatusTransitions(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	issued := f.issuePro(t)
	require.NoError(t, f.svc.Revoke(ctx, issued.LicenseKey))

	// Repeating the same transition is a no-op.
	require.NoError(t, f.svc.Revoke(ctx, issued.LicenseKey))

	// A revoked license cannot become expired.
	err := f.svc.Expire(ctx, issued.LicenseKey)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	license, err := f.svc.GetByKey(ctx, issued.LicenseKey)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevoked, license.Status)
}

func TestExpire(t *testing.T) {
	f := newLicenseFixture(t)
	ctx := context.Background()

	issued := f.issuePro(t)
	require.NoError(t, f.svc.Expire(ctx, issued.LicenseKey))

	license, err := f.svc.GetByKey(ctx, issued.LicenseKey)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, license.Status)
}
