package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/dbtest"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const tenant = "tenant-a"

func TestCategoryTree(t *testing.T) {
	db := dbtest.Setup(t)

	root := &models.Category{TenantID: tenant, Name: "Beverages"}
	require.NoError(t, Create(db, root))

	child := &models.Category{TenantID: tenant, Name: "Juices", ParentID: &root.ID}
	require.NoError(t, Create(db, child))

	got, err := Get(db, tenant, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)

	_, err = Get(db, "tenant-b", child.ID)
	require.ErrorIs(t, err, ErrCategoryNotFound)

	require.NoError(t, SetParent(db, tenant, root.ID, &child.ID))
	got, err = Get(db, tenant, root.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, child.ID, *got.ParentID)

	require.NoError(t, SetParent(db, tenant, root.ID, nil))
	got, err = Get(db, tenant, root.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	require.ErrorIs(t, SetParent(db, tenant, "missing", nil), ErrCategoryNotFound)

	_, err = Get(nil, tenant, child.ID)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestSavePermission(t *testing.T) {
	db := dbtest.Setup(t)

	testCases := []struct {
		name          string
		perm          models.CategoryPermission
		expectedError error
		wantActions   []string
	}{
		{
			name:          "empty actions",
			perm:          models.CategoryPermission{TenantID: tenant, UserID: "u1", CategoryID: "c1"},
			expectedError: ErrActionsEmpty,
		},
		{
			name:        "create",
			perm:        models.CategoryPermission{TenantID: tenant, UserID: "u1", CategoryID: "c1", Actions: []string{"read"}},
			wantActions: []string{"read"},
		},
		{
			name:        "update same key",
			perm:        models.CategoryPermission{TenantID: tenant, UserID: "u1", CategoryID: "c1", Actions: []string{"read", "write"}},
			wantActions: []string{"read", "write"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := SavePermission(db, &tc.perm)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)

			got, err := GetPermission(db, tenant, "u1", "c1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantActions, got.Actions)
			assert.True(t, got.Has(tc.wantActions[0]))
			assert.False(t, got.Has("manage"))
		})
	}

	all, err := ListPermissions(db, tenant, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeletePermission(t *testing.T) {
	db := dbtest.Setup(t)

	p := &models.CategoryPermission{TenantID: tenant, UserID: "u1", CategoryID: "c1", Actions: []string{"manage"}}
	require.NoError(t, SavePermission(db, p))

	require.NoError(t, DeletePermission(db, tenant, "u1", "c1"))
	require.ErrorIs(t, DeletePermission(db, tenant, "u1", "c1"), ErrPermissionNotFound)

	_, err := GetPermission(db, tenant, "u1", "c1")
	require.ErrorIs(t, err, ErrPermissionNotFound)
}
