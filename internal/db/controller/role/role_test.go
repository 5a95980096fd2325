package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/dbtest"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const tenant = "tenant-a"

// seedPermissions inserts catalog entries and returns them with their IDs.
func seedPermissions(t *testing.T, db *gorm.DB, codes ...string) []models.Permission {
	t.Helper()

	perms := make([]models.Permission, 0, len(codes))
	for _, code := range codes {
		p := models.Permission{Code: code, Name: code, Module: "m", Action: code}
		require.NoError(t, db.Create(&p).Error, "failed to seed test data")
		perms = append(perms, p)
	}

	return perms
}

func newRole(code string) *models.Role {
	return &models.Role{
		TenantID: tenant,
		Code:     code,
		Name:     code,
		Category: models.RoleCategoryCustom,
		Scope:    models.RoleScope{Type: models.ScopeStore, StoreIDs: []string{"s1"}},
		IsActive: true,
	}
}

func TestCreate(t *testing.T) {
	db := dbtest.Setup(t)
	perms := seedPermissions(t, db, "pos:sale", "pos:refund")

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		role          *models.Role
		expectedError error
	}{
		{name: "nil database", role: newRole("x"), expectedError: ErrDBNil},
		{name: "missing tenant", dbParam: db, role: &models.Role{Code: "x"}, expectedError: ErrTenantEmpty},
		{name: "missing code", dbParam: db, role: &models.Role{TenantID: tenant}, expectedError: ErrRoleCodeEmpty},
		{name: "created", dbParam: db, role: newRole("cashier")},
		{name: "duplicate code", dbParam: db, role: newRole("cashier"), expectedError: ErrRoleAlreadyExists},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Create(tc.dbParam, tc.role, perms)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Len(t, tc.role.ID, 36)

			stored, err := GetByCode(db, tenant, tc.role.Code)
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"pos:sale", "pos:refund"}, stored.PermissionCodes())
			assert.Equal(t, []string{"s1"}, stored.Scope.StoreIDs)
			assert.True(t, stored.IsActive)
		})
	}
}

func TestSameCodeOtherTenant(t *testing.T) {
	db := dbtest.Setup(t)

	require.NoError(t, Create(db, newRole("viewer"), nil))

	other := newRole("viewer")
	other.TenantID = "tenant-b"
	require.NoError(t, Create(db, other, nil))

	roles, err := List(db, "tenant-b")
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Empty(t, roles[0].Permissions)
}

func TestUpdateAndSetPermissions(t *testing.T) {
	db := dbtest.Setup(t)
	perms := seedPermissions(t, db, "a:read", "a:write", "b:read")

	role := newRole("clerk")
	require.NoError(t, Create(db, role, perms[:1]))

	role.Name = "Clerk"
	role.IsActive = false
	require.NoError(t, Update(db, role))
	require.NoError(t, SetPermissions(db, role, []models.Permission{perms[1], perms[2], perms[2]}))

	stored, err := Get(db, tenant, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clerk", stored.Name)
	assert.False(t, stored.IsActive)
	assert.Equal(t, []string{"a:write", "b:read"}, stored.PermissionCodes())
}

func TestListByIDs(t *testing.T) {
	db := dbtest.Setup(t)
	perms := seedPermissions(t, db, "a:read")

	r1, r2 := newRole("one"), newRole("two")
	require.NoError(t, Create(db, r1, perms))
	require.NoError(t, Create(db, r2, nil))

	roles, err := ListByIDs(db, tenant, []string{r1.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, []string{"a:read"}, roles[0].PermissionCodes())

	roles, err = ListByIDs(db, "tenant-b", []string{r1.ID})
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestDelete(t *testing.T) {
	db := dbtest.Setup(t)
	perms := seedPermissions(t, db, "a:read")

	role := newRole("temp")
	require.NoError(t, Create(db, role, perms))

	require.ErrorIs(t, Delete(db, "tenant-b", role.ID), ErrRoleNotFound)
	require.NoError(t, Delete(db, tenant, role.ID))
	require.ErrorIs(t, Delete(db, tenant, role.ID), ErrRoleNotFound)

	_, err := Get(db, tenant, role.ID)
	require.ErrorIs(t, err, ErrRoleNotFound)

	var links int64
	require.NoError(t, db.Model(&models.RolePermission{}).Count(&links).Error)
	assert.Zero(t, links)
}
