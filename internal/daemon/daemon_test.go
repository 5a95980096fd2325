package daemon_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/daemon"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Title: "test",
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Name:       filepath.Join(t.TempDir(), "authz.db"),
		},
		Cache:   config.Cache{TTL: time.Minute, Channel: "authz:invalidate"},
		Authz:   config.Authz{ElevatedRoles: []string{"owner"}, MaxCategoryDepth: 8, DefaultAllowUnmappedForms: true},
		Sweeper: config.Sweeper{Retention: time.Hour, Schedule: "@hourly"},
	}
}

func TestMigrateSeedsTenants(t *testing.T) {
	ctx := context.Background()

	d, err := daemon.New(ctx, testConfig(t))
	require.NoError(t, err)

	defer d.Close()

	require.NoError(t, d.Migrate(ctx))

	perms, err := d.Engine().Catalog().List(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(authz.DefaultPermissions()))

	require.NoError(t, d.DB().Create(&models.User{ID: "u1", TenantID: "shop-1", Username: "ann", Active: true}).Error)

	// a second run seeds the tenants known by then and keeps the rest
	require.NoError(t, d.Migrate(ctx))
	require.NoError(t, d.Migrate(ctx))

	roles, err := d.Engine().Roles().List(ctx, "shop-1")
	require.NoError(t, err)
	assert.Len(t, roles, len(authz.SystemRoles()))

	n, err := d.Sweeper().Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewWithRedisBus(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Cache.RedisAddr = mr.Addr()

	d, err := daemon.New(context.Background(), cfg)
	require.NoError(t, err)
	d.Close()

	cfg.Cache.RedisAddr = "127.0.0.1:1"

	_, err = daemon.New(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewNilConfig(t *testing.T) {
	_, err := daemon.New(context.Background(), nil)
	require.ErrorIs(t, err, config.ErrConfigNil)
}
