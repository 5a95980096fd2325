package authz

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	categoryctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/category"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
	"github.com/GenziCode/genzi-rms-sub003/internal/directory"
)

// CategoryAction is a permission of the category overlay.
type CategoryAction string

// Category actions.
const (
	CategoryRead              CategoryAction = "read"
	CategoryWrite             CategoryAction = "write"
	CategoryDelete            CategoryAction = "delete"
	CategoryManage            CategoryAction = "manage"
	CategoryAssign            CategoryAction = "assign"
	CategoryViewHierarchy     CategoryAction = "viewHierarchy"
	CategoryCreateSubcategory CategoryAction = "createSubcategory"
)

// DefaultMaxCategoryDepth bounds the number of ancestors a category may have.
const DefaultMaxCategoryDepth = 32

// Valid reports whether a is a known action.
func (a CategoryAction) Valid() bool {
	switch a {
	case CategoryRead, CategoryWrite, CategoryDelete, CategoryManage,
		CategoryAssign, CategoryViewHierarchy, CategoryCreateSubcategory:
		return true
	}

	return false
}

// CategoryResolver decides access to categories. It is independent of role
// permissions except for the global wildcard bypass.
type CategoryResolver struct {
	*deps
	perms    permissionSource
	dir      directory.Directory
	elevated map[string]struct{}
	maxDepth int
}

// CheckPermission decides whether the user may perform action on the category.
//
// Holders of the global wildcard and elevated tenant members are always allowed.
// Otherwise an explicit grant of the action or of manage allows. Without any grant
// document, read is allowed and everything else denied. With a document lacking read,
// manage on the parent category grants read. Only the parent is consulted.
func (r *CategoryResolver) CheckPermission(ctx context.Context, tenantID, userID, categoryID string, action CategoryAction) (Decision, error) {
	d, err := r.checkPermission(ctx, tenantID, userID, categoryID, action)
	observe("category", d, err)

	if err != nil {
		r.log.Error().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).
			Str("category_id", categoryID).Str("permission", string(action)).Msg("category check failed")
	} else if !d.Allowed {
		r.log.Debug().Str("tenant_id", tenantID).Str("user_id", userID).
			Str("category_id", categoryID).Str("permission", string(action)).Str("reason", d.Reason).
			Msg("category access denied")
	}

	return d, err
}

func (r *CategoryResolver) checkPermission(ctx context.Context, tenantID, userID, categoryID string, action CategoryAction) (Decision, error) {
	if !action.Valid() {
		return deny(ReasonMissing), errors.Wrapf(ErrInvalidAction, "%q", action)
	}

	grants, err := r.perms.GetUserPermissions(ctx, tenantID, userID)
	if err != nil {
		return deny(ReasonStoreError), err
	}

	if grants.IsGlobal() {
		return allow(ReasonGlobal), nil
	}

	if r.dir != nil {
		member, err := r.dir.Lookup(ctx, tenantID, userID)

		switch {
		case errors.Is(err, directory.ErrMemberNotFound):
			return deny(ReasonNotMember), nil
		case err != nil:
			return deny(ReasonStoreError), fmt.Errorf("failed to look up tenant member: %w", err)
		case !member.Active:
			return deny(ReasonInactiveMember), nil
		}

		if _, ok := r.elevated[member.Role]; ok {
			return allow(ReasonElevated), nil
		}
	}

	cat, err := categoryctl.Get(r.conn(ctx), tenantID, categoryID)
	if errors.Is(err, categoryctl.ErrCategoryNotFound) {
		return deny(ReasonUnknownCategory), nil
	}

	if err != nil {
		return deny(ReasonStoreError), fmt.Errorf("failed to load category: %w", err)
	}

	return r.decide(ctx, tenantID, userID, cat, action)
}

// decide applies the user's grant document of cat and, for read, the manage grant on its parent.
func (r *CategoryResolver) decide(ctx context.Context, tenantID, userID string, cat *models.Category, action CategoryAction) (Decision, error) {
	db := r.conn(ctx)

	doc, err := categoryctl.GetPermission(db, tenantID, userID, cat.ID)

	switch {
	case errors.Is(err, categoryctl.ErrPermissionNotFound):
		if action == CategoryRead {
			return allow(ReasonDefaultRead), nil
		}

		return deny(ReasonMissing), nil
	case err != nil:
		return deny(ReasonStoreError), fmt.Errorf("failed to load category permission: %w", err)
	case doc.Has(string(action)) || doc.Has(string(CategoryManage)):
		return allow(ReasonExplicitGrant), nil
	case action != CategoryRead || cat.ParentID == nil || *cat.ParentID == "":
		return deny(ReasonMissing), nil
	case *cat.ParentID == cat.ID:
		return deny(ReasonStoreError), errors.Wrapf(ErrCategoryCycle, "category %q is its own parent", cat.ID)
	}

	parent, err := categoryctl.Get(db, tenantID, *cat.ParentID)
	if errors.Is(err, categoryctl.ErrCategoryNotFound) {
		r.log.Warn().Str("tenant_id", tenantID).Str("category_id", cat.ID).
			Str("parent_id", *cat.ParentID).Msg("category parent missing, treating as root")

		return deny(ReasonMissing), nil
	}

	if err != nil {
		return deny(ReasonStoreError), fmt.Errorf("failed to load parent category: %w", err)
	}

	// manage on the parent grants read, never more
	pdoc, err := categoryctl.GetPermission(db, tenantID, userID, parent.ID)

	switch {
	case errors.Is(err, categoryctl.ErrPermissionNotFound):
		return deny(ReasonMissing), nil
	case err != nil:
		return deny(ReasonStoreError), fmt.Errorf("failed to load parent category permission: %w", err)
	case pdoc.Has(string(CategoryManage)):
		return allow(ReasonInherited), nil
	}

	return deny(ReasonMissing), nil
}

// CreateCategory adds a category under parentID, or a root when parentID is nil.
func (r *CategoryResolver) CreateCategory(ctx context.Context, tenantID, name string, parentID *string) (*models.Category, error) {
	if tenantID == "" || name == "" {
		return nil, errors.Wrap(ErrInvalidInput, "tenant id and name are required")
	}

	db := r.conn(ctx)
	cat := &models.Category{TenantID: tenantID, Name: name}

	if parentID != nil && *parentID != "" {
		if err := r.checkAncestry(db, tenantID, "", *parentID); err != nil {
			return nil, err
		}

		cat.ParentID = parentID
	}

	if err := categoryctl.Create(db, cat); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	r.log.Info().Str("tenant_id", tenantID).Str("category_id", cat.ID).Msg("category created")

	return cat, nil
}

// MoveCategory re-parents a category. Moves that would close a cycle or grow the
// ancestor chain beyond the depth bound are refused.
func (r *CategoryResolver) MoveCategory(ctx context.Context, tenantID, id string, parentID *string) error {
	db := r.conn(ctx)

	if _, err := categoryctl.Get(db, tenantID, id); err != nil {
		if errors.Is(err, categoryctl.ErrCategoryNotFound) {
			return errors.Wrapf(ErrCategoryNotFound, "%q", id)
		}

		return fmt.Errorf("failed to load category: %w", err)
	}

	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	if parentID != nil {
		if err := r.checkAncestry(db, tenantID, id, *parentID); err != nil {
			return err
		}
	}

	if err := categoryctl.SetParent(db, tenantID, id, parentID); err != nil {
		return fmt.Errorf("failed to move category: %w", err)
	}

	r.log.Info().Str("tenant_id", tenantID).Str("category_id", id).Msg("category moved")

	return nil
}

// checkAncestry walks up from parentID and fails when it meets id, revisits a
// category or exceeds the depth bound. A missing ancestor above parentID ends the chain.
func (r *CategoryResolver) checkAncestry(db *gorm.DB, tenantID, id, parentID string) error {
	visited := map[string]struct{}{}
	if id != "" {
		visited[id] = struct{}{}
	}

	cur := parentID

	for depth := 1; ; depth++ {
		if _, ok := visited[cur]; ok {
			return errors.Wrapf(ErrCategoryCycle, "category %q", cur)
		}

		if depth > r.maxDepth {
			return errors.Wrapf(ErrCategoryTooDeep, "more than %d levels above the category", r.maxDepth)
		}

		visited[cur] = struct{}{}

		cat, err := categoryctl.Get(db, tenantID, cur)

		switch {
		case errors.Is(err, categoryctl.ErrCategoryNotFound) && depth == 1:
			return errors.Wrapf(ErrCategoryNotFound, "parent %q", cur)
		case errors.Is(err, categoryctl.ErrCategoryNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("failed to load category: %w", err)
		case cat.ParentID == nil || *cat.ParentID == "":
			return nil
		}

		cur = *cat.ParentID
	}
}

// GrantCategoryPermissions adds actions to the user's grant document of a category.
func (r *CategoryResolver) GrantCategoryPermissions(ctx context.Context, tenantID, userID, categoryID string,
	actions []CategoryAction, grantedBy string,
) (*models.CategoryPermission, error) {
	if err := checkActions(actions); err != nil {
		return nil, err
	}

	db := r.conn(ctx)

	if _, err := categoryctl.Get(db, tenantID, categoryID); err != nil {
		if errors.Is(err, categoryctl.ErrCategoryNotFound) {
			return nil, errors.Wrapf(ErrCategoryNotFound, "%q", categoryID)
		}

		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	doc, err := categoryctl.GetPermission(db, tenantID, userID, categoryID)

	switch {
	case errors.Is(err, categoryctl.ErrPermissionNotFound):
		doc = &models.CategoryPermission{TenantID: tenantID, UserID: userID, CategoryID: categoryID}
	case err != nil:
		return nil, fmt.Errorf("failed to load category permission: %w", err)
	}

	doc.Actions = mergeActions(doc.Actions, actions, nil)
	doc.GrantedBy = grantedBy

	if err = categoryctl.SavePermission(db, doc); err != nil {
		return nil, fmt.Errorf("failed to save category permission: %w", err)
	}

	r.log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Str("category_id", categoryID).
		Strs("permissions", doc.Actions).Msg("category permissions granted")

	return doc, nil
}

// RevokeCategoryPermissions removes actions from the user's grant document of a category.
// The document is deleted when no action is left, in which case nil is returned.
func (r *CategoryResolver) RevokeCategoryPermissions(ctx context.Context, tenantID, userID, categoryID string,
	actions []CategoryAction,
) (*models.CategoryPermission, error) {
	if err := checkActions(actions); err != nil {
		return nil, err
	}

	db := r.conn(ctx)

	doc, err := categoryctl.GetPermission(db, tenantID, userID, categoryID)
	if errors.Is(err, categoryctl.ErrPermissionNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "category permission of user %q on %q", userID, categoryID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load category permission: %w", err)
	}

	doc.Actions = mergeActions(doc.Actions, nil, actions)

	logger := r.log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Str("category_id", categoryID)

	if len(doc.Actions) == 0 {
		if err = categoryctl.DeletePermission(db, tenantID, userID, categoryID); err != nil {
			return nil, fmt.Errorf("failed to delete category permission: %w", err)
		}

		logger.Msg("category permissions removed")

		return nil, nil //nolint:nilnil
	}

	if err = categoryctl.SavePermission(db, doc); err != nil {
		return nil, fmt.Errorf("failed to save category permission: %w", err)
	}

	logger.Strs("permissions", doc.Actions).Msg("category permissions revoked")

	return doc, nil
}

// GetUserCategoryPermissions returns every grant document of the user.
func (r *CategoryResolver) GetUserCategoryPermissions(ctx context.Context, tenantID, userID string) ([]models.CategoryPermission, error) {
	docs, err := categoryctl.ListPermissions(r.conn(ctx), tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category permissions: %w", err)
	}

	return docs, nil
}

// ListAccessibleCategories returns the ids of the categories the user holds an explicit
// grant of action or manage on. Default read and inherited access are not listed.
func (r *CategoryResolver) ListAccessibleCategories(ctx context.Context, tenantID, userID string, action CategoryAction) ([]string, error) {
	if !action.Valid() {
		return nil, errors.Wrapf(ErrInvalidAction, "%q", action)
	}

	docs, err := r.GetUserCategoryPermissions(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))

	for i := range docs {
		if docs[i].Has(string(action)) || docs[i].Has(string(CategoryManage)) {
			ids = append(ids, docs[i].CategoryID)
		}
	}

	return ids, nil
}

func checkActions(actions []CategoryAction) error {
	if len(actions) == 0 {
		return errors.Wrap(ErrInvalidInput, "no category actions given")
	}

	for _, a := range actions {
		if !a.Valid() {
			return errors.Wrapf(ErrInvalidAction, "%q", a)
		}
	}

	return nil
}

// mergeActions returns current plus add minus remove, sorted and without duplicates.
func mergeActions(current []string, add, remove []CategoryAction) []string {
	set := make(map[string]struct{}, len(current)+len(add))
	for _, a := range current {
		set[a] = struct{}{}
	}

	for _, a := range add {
		set[string(a)] = struct{}{}
	}

	for _, a := range remove {
		delete(set, string(a))
	}

	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}

	sort.Strings(out)

	return out
}
