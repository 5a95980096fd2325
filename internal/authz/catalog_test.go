package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

func codesOf(perms []models.Permission) []string {
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.Code)
	}

	return out
}

func TestCatalogSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	perms, err := f.engine.Catalog().List(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(authz.DefaultPermissions()))

	global, err := f.engine.Catalog().Get(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionCategoryAdmin, global.Category)

	// seeding twice is harmless
	require.NoError(t, f.engine.Catalog().Seed(ctx))

	again, err := f.engine.Catalog().List(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(perms))

	pos, err := f.engine.Catalog().ListByModule(ctx, "POS")
	require.NoError(t, err)
	assert.Contains(t, codesOf(pos), "pos:refund")

	for _, p := range pos {
		assert.Equal(t, "pos", p.Module)
	}
}

func TestCatalogResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posPerms, err := f.engine.Catalog().ListByModule(ctx, "pos")
	require.NoError(t, err)

	testCases := []struct {
		name      string
		codes     []string
		wantCodes []string
		wantLen   int
		wantErr   error
	}{
		{name: "global", codes: []string{"*"}, wantCodes: []string{"*"}},
		{name: "literal", codes: []string{"Product:Read"}, wantCodes: []string{"product:read"}},
		{name: "module wildcard", codes: []string{"pos:*"}, wantLen: len(posPerms)},
		{name: "deduplicated", codes: []string{"pos:*", "pos:refund"}, wantLen: len(posPerms)},
		{name: "empty", codes: nil, wantErr: authz.ErrEmptyCodes},
		{name: "unknown literal", codes: []string{"product:teleport"}, wantErr: authz.ErrPermissionNotFound},
		{name: "unknown module", codes: []string{"spaceship:*"}, wantErr: authz.ErrPermissionNotFound},
		{name: "invalid", codes: []string{"nocolon"}, wantErr: authz.ErrInvalidCode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			perms, err := f.engine.Catalog().Resolve(ctx, tc.codes)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)

			if tc.wantCodes != nil {
				assert.Equal(t, tc.wantCodes, codesOf(perms))
			} else {
				assert.Len(t, perms, tc.wantLen)
			}
		})
	}
}

func TestCatalogDefine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// warm the cache
	_, err := f.engine.Catalog().List(ctx)
	require.NoError(t, err)

	p, err := f.engine.Catalog().Define(ctx, authz.PermissionInput{Code: "Loyalty:Redeem", Category: models.PermissionCategoryAction})
	require.NoError(t, err)
	assert.Equal(t, "loyalty:redeem", p.Code)
	assert.Equal(t, "loyalty", p.Module)
	assert.Equal(t, "redeem", p.Action)

	// write-through: visible without waiting for the TTL
	got, err := f.engine.Catalog().Get(ctx, "loyalty:redeem")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionCategoryAction, got.Category)

	testCases := []struct {
		name    string
		in      authz.PermissionInput
		wantErr error
	}{
		{name: "module wildcard", in: authz.PermissionInput{Code: "loyalty:*"}, wantErr: authz.ErrInvalidCode},
		{name: "malformed", in: authz.PermissionInput{Code: "loyalty"}, wantErr: authz.ErrInvalidCode},
		{name: "unknown category", in: authz.PermissionInput{Code: "loyalty:earn", Category: "misc"}, wantErr: authz.ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Catalog().Define(ctx, tc.in)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCatalogCacheTTL(t *testing.T) {
	f := newFixture(t, authz.WithTTL(time.Minute))
	ctx := context.Background()

	_, err := f.engine.Catalog().Get(ctx, "product:read")
	require.NoError(t, err)

	// a change behind the engine's back is not seen until the generation expires
	require.NoError(t, f.db.Model(&models.Permission{}).Where("code = ?", "product:read").
		Update("name", "Browse products").Error)

	cached, err := f.engine.Catalog().Get(ctx, "product:read")
	require.NoError(t, err)
	assert.NotEqual(t, "Browse products", cached.Name)

	f.clock.Advance(time.Minute)

	fresh, err := f.engine.Catalog().Get(ctx, "product:read")
	require.NoError(t, err)
	assert.Equal(t, "Browse products", fresh.Name)
}
