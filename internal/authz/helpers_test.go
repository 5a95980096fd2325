package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/clock"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/dbtest"
	"github.com/GenziCode/genzi-rms-sub003/internal/directory"
)

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
)

var epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

type fixture struct {
	db     *gorm.DB
	clock  *clock.Fake
	engine *authz.Engine
}

// newFixture creates an engine on a seeded catalog.
func newFixture(t *testing.T, opts ...authz.Option) *fixture {
	t.Helper()

	db := dbtest.Setup(t)
	clk := clock.NewFake(epoch)

	opts = append([]authz.Option{authz.WithClock(clk)}, opts...)
	e := authz.New(db, opts...)

	require.NoError(t, e.Catalog().Seed(context.Background()))

	return &fixture{db: db, clock: clk, engine: e}
}

// grantRole creates a role with codes and assigns it to the user.
func (f *fixture) grantRole(t *testing.T, tenantID, userID, code string, codes ...string) string {
	t.Helper()

	ctx := context.Background()

	role, err := f.engine.Roles().Create(ctx, tenantID, authz.CreateRoleInput{
		Code: code, Name: code, PermissionCodes: codes,
	})
	require.NoError(t, err)

	_, err = f.engine.Assignments().Assign(ctx, tenantID, userID, authz.AssignInput{RoleID: role.ID, AssignedBy: "test"})
	require.NoError(t, err)

	return role.ID
}

// closeDB makes every following store call fail.
func (f *fixture) closeDB(t *testing.T) {
	t.Helper()

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

// staticDirectory is an in-memory user directory.
type staticDirectory map[string]directory.Member

func (d staticDirectory) Lookup(_ context.Context, tenantID, userID string) (*directory.Member, error) {
	m, ok := d[tenantID+"/"+userID]
	if !ok {
		return nil, directory.ErrMemberNotFound
	}

	return &m, nil
}

func ptr[T any](v T) *T {
	return &v
}
