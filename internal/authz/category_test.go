package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	categoryctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/category"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
	"github.com/GenziCode/genzi-rms-sub003/internal/directory"
)

// seedTree creates root > child > grandchild and returns their ids.
func seedTree(t *testing.T, f *fixture) (string, string, string) {
	t.Helper()

	root := &models.Category{TenantID: tenantA, Name: "Food"}
	require.NoError(t, categoryctl.Create(f.db, root))

	child := &models.Category{TenantID: tenantA, Name: "Dairy", ParentID: &root.ID}
	require.NoError(t, categoryctl.Create(f.db, child))

	grandchild := &models.Category{TenantID: tenantA, Name: "Cheese", ParentID: &child.ID}
	require.NoError(t, categoryctl.Create(f.db, grandchild))

	return root.ID, child.ID, grandchild.ID
}

func grant(t *testing.T, f *fixture, userID, categoryID string, actions ...authz.CategoryAction) {
	t.Helper()

	_, err := f.engine.Categories().GrantCategoryPermissions(context.Background(), tenantA, userID, categoryID, actions, "admin")
	require.NoError(t, err)
}

func TestCategoryInheritance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rootID, childID, _ := seedTree(t, f)

	grant(t, f, "u1", rootID, authz.CategoryManage)

	d, err := f.engine.Categories().CheckPermission(ctx, tenantA, "u1", childID, authz.CategoryRead)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = f.engine.Categories().CheckPermission(ctx, tenantA, "u1", childID, authz.CategoryWrite)
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	d, err = f.engine.Categories().CheckPermission(ctx, tenantA, "u1", rootID, authz.CategoryDelete)
	require.NoError(t, err)
	assert.True(t, d.Allowed, "manage implies every action on the category itself")
	assert.Equal(t, authz.ReasonExplicitGrant, d.Reason)
}

func TestCategoryCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rootID, childID, grandchildID := seedTree(t, f)

	grant(t, f, "u1", rootID, authz.CategoryManage)
	// an explicit document without read on the child switches off default read
	grant(t, f, "u1", childID, authz.CategoryAssign)
	grant(t, f, "u1", grandchildID, authz.CategoryAssign)
	grant(t, f, "u2", childID, authz.CategoryWrite)

	testCases := []struct {
		name       string
		userID     string
		categoryID string
		action     authz.CategoryAction
		want       bool
		wantReason string
	}{
		{name: "explicit action", userID: "u1", categoryID: childID, action: authz.CategoryAssign, want: true, wantReason: authz.ReasonExplicitGrant},
		{name: "read inherited from manage on parent", userID: "u1", categoryID: childID, action: authz.CategoryRead, want: true, wantReason: authz.ReasonInherited},
		{name: "inherited read is not manage", userID: "u1", categoryID: grandchildID, action: authz.CategoryRead, want: false},
		{name: "default read without document", userID: "u3", categoryID: grandchildID, action: authz.CategoryRead, want: true, wantReason: authz.ReasonDefaultRead},
		{name: "no default write", userID: "u3", categoryID: grandchildID, action: authz.CategoryWrite, want: false},
		{name: "document without read", userID: "u2", categoryID: childID, action: authz.CategoryRead, want: false},
		{name: "write granted", userID: "u2", categoryID: childID, action: authz.CategoryWrite, want: true},
		{name: "write does not reach children", userID: "u2", categoryID: grandchildID, action: authz.CategoryWrite, want: false},
		{name: "unknown category", userID: "u1", categoryID: "missing", action: authz.CategoryRead, want: false, wantReason: authz.ReasonUnknownCategory},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := f.engine.Categories().CheckPermission(ctx, tenantA, tc.userID, tc.categoryID, tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Allowed)

			if tc.wantReason != "" {
				assert.Equal(t, tc.wantReason, d.Reason)
			}
		})
	}

	_, err := f.engine.Categories().CheckPermission(ctx, tenantA, "u1", childID, "fly")
	require.ErrorIs(t, err, authz.ErrInvalidAction)
}

func TestCategoryBypass(t *testing.T) {
	dir := staticDirectory{
		tenantA + "/owner":    {TenantID: tenantA, UserID: "owner", Role: models.MemberRoleOwner, Active: true},
		tenantA + "/member":   {TenantID: tenantA, UserID: "member", Role: models.MemberRoleMember, Active: true},
		tenantA + "/inactive": {TenantID: tenantA, UserID: "inactive", Role: models.MemberRoleAdmin, Active: false},
		tenantA + "/global":   {TenantID: tenantA, UserID: "global", Role: models.MemberRoleMember, Active: false},
	}

	f := newFixture(t, authz.WithDirectory(dir))
	ctx := context.Background()
	_, childID, _ := seedTree(t, f)

	f.grantRole(t, tenantA, "global", "superuser", "*")

	testCases := []struct {
		name       string
		userID     string
		want       bool
		wantReason string
	}{
		{name: "global wildcard", userID: "global", want: true, wantReason: authz.ReasonGlobal},
		{name: "elevated member role", userID: "owner", want: true, wantReason: authz.ReasonElevated},
		{name: "regular member", userID: "member", want: false, wantReason: authz.ReasonMissing},
		{name: "inactive member", userID: "inactive", want: false, wantReason: authz.ReasonInactiveMember},
		{name: "not a member", userID: "stranger", want: false, wantReason: authz.ReasonNotMember},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := f.engine.Categories().CheckPermission(ctx, tenantA, tc.userID, childID, authz.CategoryDelete)
			require.NoError(t, err)
			assert.Equal(t, authz.Decision{Allowed: tc.want, Reason: tc.wantReason}, d)
		})
	}
}

func TestCategoryElevatedRolesConfigurable(t *testing.T) {
	dir := staticDirectory{
		tenantA + "/owner": {TenantID: tenantA, UserID: "owner", Role: models.MemberRoleOwner, Active: true},
	}

	f := newFixture(t, authz.WithDirectory(dir), authz.WithElevatedRoles("Admin"))
	_, childID, _ := seedTree(t, f)

	d, err := f.engine.Categories().CheckPermission(context.Background(), tenantA, "owner", childID, authz.CategoryWrite)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestCategoryCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rootID, childID, grandchildID := seedTree(t, f)
	categories := f.engine.Categories()

	testCases := []struct {
		name     string
		id       string
		parentID *string
		wantErr  error
	}{
		{name: "under own grandchild", id: rootID, parentID: &grandchildID, wantErr: authz.ErrCategoryCycle},
		{name: "own parent", id: childID, parentID: &childID, wantErr: authz.ErrCategoryCycle},
		{name: "unknown parent", id: childID, parentID: ptr("missing"), wantErr: authz.ErrCategoryNotFound},
		{name: "unknown category", id: "missing", parentID: &rootID, wantErr: authz.ErrCategoryNotFound},
		{name: "to root", id: grandchildID},
		{name: "back under child", id: grandchildID, parentID: &childID},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := categories.MoveCategory(ctx, tenantA, tc.id, tc.parentID)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}

	err := categories.MoveCategory(ctx, tenantA, rootID, &grandchildID)
	assert.Equal(t, authz.KindIntegrity, authz.KindOf(err))

	// cycles written around the resolver do not break checks that stop at the category
	require.NoError(t, categoryctl.SetParent(f.db, tenantA, rootID, &grandchildID))

	d, err := categories.CheckPermission(ctx, tenantA, "u1", childID, authz.CategoryWrite)
	require.NoError(t, err)
	assert.Equal(t, authz.Decision{Allowed: false, Reason: authz.ReasonMissing}, d)

	d, err = categories.CheckPermission(ctx, tenantA, "u1", childID, authz.CategoryRead)
	require.NoError(t, err)
	assert.Equal(t, authz.Decision{Allowed: true, Reason: authz.ReasonDefaultRead}, d)

	// a self parent met while looking for an inherited read is reported
	require.NoError(t, categoryctl.SetParent(f.db, tenantA, rootID, &rootID))
	grant(t, f, "u1", rootID, authz.CategoryAssign)

	d, err = categories.CheckPermission(ctx, tenantA, "u1", rootID, authz.CategoryRead)
	require.ErrorIs(t, err, authz.ErrCategoryCycle)
	assert.False(t, d.Allowed)
}

func TestCategoryDepthBound(t *testing.T) {
	f := newFixture(t, authz.WithMaxCategoryDepth(8))
	ctx := context.Background()

	// a chain deeper than the bound, written directly to the store
	ids := make([]string, 0, 40)

	var parentID *string

	for i := 0; i < 40; i++ {
		c := &models.Category{TenantID: tenantA, Name: "level", ParentID: parentID}
		require.NoError(t, categoryctl.Create(f.db, c))

		ids = append(ids, c.ID)
		parentID = &ids[len(ids)-1]
	}

	leafID := ids[len(ids)-1]

	d, err := f.engine.Categories().CheckPermission(ctx, tenantA, "u2", leafID, authz.CategoryWrite)
	require.NoError(t, err)
	assert.Equal(t, authz.Decision{Allowed: false, Reason: authz.ReasonMissing}, d)

	d, err = f.engine.Categories().CheckPermission(ctx, tenantA, "u2", leafID, authz.CategoryRead)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	grant(t, f, "u2", ids[len(ids)-2], authz.CategoryManage)
	grant(t, f, "u2", leafID, authz.CategoryAssign)

	d, err = f.engine.Categories().CheckPermission(ctx, tenantA, "u2", leafID, authz.CategoryRead)
	require.NoError(t, err)
	assert.Equal(t, authz.Decision{Allowed: true, Reason: authz.ReasonInherited}, d)

	// the bound applies to new links
	_, err = f.engine.Categories().CreateCategory(ctx, tenantA, "Too deep", &leafID)
	require.ErrorIs(t, err, authz.ErrCategoryTooDeep)
	assert.Equal(t, authz.KindIntegrity, authz.KindOf(err))

	cat, err := f.engine.Categories().CreateCategory(ctx, tenantA, "Shallow", &ids[3])
	require.NoError(t, err)
	assert.Equal(t, ids[3], *cat.ParentID)

	root, err := f.engine.Categories().CreateCategory(ctx, tenantA, "Root", nil)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	err = f.engine.Categories().MoveCategory(ctx, tenantA, root.ID, &ids[20])
	require.ErrorIs(t, err, authz.ErrCategoryTooDeep)

	_, err = f.engine.Categories().CreateCategory(ctx, tenantA, "", nil)
	require.ErrorIs(t, err, authz.ErrInvalidInput)
}

func TestCategoryDanglingParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, childID, _ := seedTree(t, f)

	require.NoError(t, categoryctl.SetParent(f.db, tenantA, childID, ptr("gone")))
	grant(t, f, "u1", childID, authz.CategoryAssign)

	d, err := f.engine.Categories().CheckPermission(ctx, tenantA, "u1", childID, authz.CategoryRead)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestGrantRevokeCategoryPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rootID, childID, _ := seedTree(t, f)

	grant(t, f, "u1", rootID, authz.CategoryRead, authz.CategoryWrite)
	grant(t, f, "u1", rootID, authz.CategoryWrite, authz.CategoryDelete)
	grant(t, f, "u1", childID, authz.CategoryManage)

	docs, err := f.engine.Categories().GetUserCategoryPermissions(ctx, tenantA, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids, err := f.engine.Categories().ListAccessibleCategories(ctx, tenantA, "u1", authz.CategoryDelete)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{rootID, childID}, ids)

	ids, err = f.engine.Categories().ListAccessibleCategories(ctx, tenantA, "u1", authz.CategoryAssign)
	require.NoError(t, err)
	assert.Equal(t, []string{childID}, ids)

	doc, err := f.engine.Categories().RevokeCategoryPermissions(ctx, tenantA, "u1", rootID, []authz.CategoryAction{authz.CategoryWrite})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"delete", "read"}, doc.Actions)

	// removing the last actions deletes the document
	doc, err = f.engine.Categories().RevokeCategoryPermissions(ctx, tenantA, "u1", rootID,
		[]authz.CategoryAction{authz.CategoryRead, authz.CategoryDelete})
	require.NoError(t, err)
	assert.Nil(t, doc)

	_, err = categoryctl.GetPermission(f.db, tenantA, "u1", rootID)
	require.ErrorIs(t, err, categoryctl.ErrPermissionNotFound)

	_, err = f.engine.Categories().RevokeCategoryPermissions(ctx, tenantA, "u1", rootID, []authz.CategoryAction{authz.CategoryRead})
	require.ErrorIs(t, err, authz.ErrNotFound)

	_, err = f.engine.Categories().GrantCategoryPermissions(ctx, tenantA, "u1", "missing", []authz.CategoryAction{authz.CategoryRead}, "admin")
	require.ErrorIs(t, err, authz.ErrCategoryNotFound)

	_, err = f.engine.Categories().GrantCategoryPermissions(ctx, tenantA, "u1", rootID, nil, "admin")
	require.ErrorIs(t, err, authz.ErrInvalidInput)

	_, err = f.engine.Categories().GrantCategoryPermissions(ctx, tenantA, "u1", rootID, []authz.CategoryAction{"fly"}, "admin")
	require.ErrorIs(t, err, authz.ErrInvalidAction)
}

var _ directory.Directory = staticDirectory{}
