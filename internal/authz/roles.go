package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	assignmentctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/assignment"
	rolectl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/role"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// CreateRoleInput describes a new role.
type CreateRoleInput struct {
	Code            string `validate:"required,max=50"`
	Name            string `validate:"required,max=100"`
	Description     string `validate:"max=255"`
	PermissionCodes []string
	ParentRoleID    *string
	Scope           *models.RoleScope
	// IsActive defaults to true.
	IsActive *bool
}

// UpdateRoleInput changes a role. Nil fields are left as they are.
// A non nil PermissionCodes re-resolves the permissions of the role.
type UpdateRoleInput struct {
	Name            *string `validate:"omitnil,min=1,max=100"`
	Description     *string `validate:"omitnil,max=255"`
	PermissionCodes []string
	ParentRoleID    *string
	Scope           *models.RoleScope
	IsActive        *bool
}

// RoleStore manages the roles of the tenants.
type RoleStore struct {
	*deps
	catalog *Catalog
}

func newRoleStore(d *deps, catalog *Catalog) *RoleStore {
	return &RoleStore{deps: d, catalog: catalog}
}

// Create creates a custom role with its permission codes resolved against the catalog.
func (s *RoleStore) Create(ctx context.Context, tenantID string, in CreateRoleInput) (*models.Role, error) {
	in.Code = NormalizeCode(in.Code)
	if strings.HasPrefix(in.Code, SystemRolePrefix) {
		return nil, errors.Wrapf(ErrInvalidInput, "role code prefix %q is reserved", SystemRolePrefix)
	}

	return s.create(ctx, tenantID, in, models.RoleCategoryCustom, false)
}

func (s *RoleStore) create(ctx context.Context, tenantID string, in CreateRoleInput, cat models.RoleCategory, system bool) (*models.Role, error) {
	if tenantID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "tenant id is required")
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	if !codePart.MatchString(in.Code) {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid role code %q", in.Code)
	}

	if len(in.PermissionCodes) == 0 {
		return nil, ErrEmptyCodes
	}

	scope := models.RoleScope{Type: models.ScopeAll}
	if in.Scope != nil {
		scope = *in.Scope
	}

	if err := validateScope(scope); err != nil {
		return nil, err
	}

	perms, err := s.catalog.Resolve(ctx, in.PermissionCodes)
	if err != nil {
		return nil, err
	}

	db := s.conn(ctx)

	if in.ParentRoleID != nil {
		if _, err = s.get(db, tenantID, *in.ParentRoleID); err != nil {
			return nil, errors.Wrap(err, "parent role")
		}
	}

	role := &models.Role{
		TenantID:     tenantID,
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
		Category:     cat,
		ParentRoleID: in.ParentRoleID,
		Scope:        scope,
		IsSystemRole: system,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}

	err = rolectl.Create(db, role, perms)
	if errors.Is(err, rolectl.ErrRoleAlreadyExists) {
		return nil, errors.Wrapf(ErrRoleExists, "%q", role.Code)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create role %s: %w", role.Code, err)
	}

	s.log.Info().Str("tenant_id", tenantID).Str("role", role.Code).
		Strs("permissions", role.PermissionCodes()).Msg("role created")

	return role, nil
}

// Update changes a custom role. System roles are rejected with ErrSystemRole.
func (s *RoleStore) Update(ctx context.Context, tenantID, id string, in UpdateRoleInput) (*models.Role, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	db := s.conn(ctx)

	role, err := s.get(db, tenantID, id)
	if err != nil {
		return nil, err
	}

	if role.IsSystemRole {
		return nil, errors.Wrapf(ErrSystemRole, "%q", role.Code)
	}

	var perms []models.Permission

	if in.PermissionCodes != nil {
		if len(in.PermissionCodes) == 0 {
			return nil, ErrEmptyCodes
		}

		if perms, err = s.catalog.Resolve(ctx, in.PermissionCodes); err != nil {
			return nil, err
		}
	}

	if in.ParentRoleID != nil {
		if *in.ParentRoleID == role.ID {
			return nil, errors.Wrap(ErrInvalidInput, "a role cannot be its own parent")
		}

		if _, err = s.get(db, tenantID, *in.ParentRoleID); err != nil {
			return nil, errors.Wrap(err, "parent role")
		}

		role.ParentRoleID = in.ParentRoleID
	}

	if in.Scope != nil {
		if err = validateScope(*in.Scope); err != nil {
			return nil, err
		}

		role.Scope = *in.Scope
	}

	if in.Name != nil {
		role.Name = *in.Name
	}

	if in.Description != nil {
		role.Description = *in.Description
	}

	if in.IsActive != nil {
		role.IsActive = *in.IsActive
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := rolectl.Update(tx, role); err != nil {
			return err
		}

		if perms != nil {
			return rolectl.SetPermissions(tx, role, perms)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update role %s: %w", role.Code, err)
	}

	s.log.Info().Str("tenant_id", tenantID).Str("role", role.Code).Msg("role updated")

	return role, nil
}

// Delete deletes a custom role that no valid assignment references.
func (s *RoleStore) Delete(ctx context.Context, tenantID, id string) error {
	db := s.conn(ctx)

	role, err := s.get(db, tenantID, id)
	if err != nil {
		return err
	}

	if role.IsSystemRole {
		return errors.Wrapf(ErrSystemRole, "%q", role.Code)
	}

	n, err := assignmentctl.CountValidForRole(db, tenantID, id, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to count role assignments: %w", err)
	}

	if n > 0 {
		return errors.Wrapf(ErrRoleInUse, "role %q has %d assignments", role.Code, n)
	}

	if err = rolectl.Delete(db, tenantID, id); err != nil {
		if errors.Is(err, rolectl.ErrRoleNotFound) {
			return errors.Wrapf(ErrRoleNotFound, "%q", id)
		}

		return fmt.Errorf("failed to delete role %s: %w", role.Code, err)
	}

	s.log.Info().Str("tenant_id", tenantID).Str("role", role.Code).Msg("role deleted")

	return nil
}

// Get returns a role with its permissions.
func (s *RoleStore) Get(ctx context.Context, tenantID, id string) (*models.Role, error) {
	return s.get(s.conn(ctx), tenantID, id)
}

// GetByCode returns a role with its permissions by code.
func (s *RoleStore) GetByCode(ctx context.Context, tenantID, code string) (*models.Role, error) {
	role, err := rolectl.GetByCode(s.conn(ctx), tenantID, NormalizeCode(code))

	return role, mapRoleErr(err, code)
}

// List returns the roles of a tenant.
func (s *RoleStore) List(ctx context.Context, tenantID string) ([]models.Role, error) {
	roles, err := rolectl.List(s.conn(ctx), tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

func (s *RoleStore) get(db *gorm.DB, tenantID, id string) (*models.Role, error) {
	role, err := rolectl.Get(db, tenantID, id)

	return role, mapRoleErr(err, id)
}

func mapRoleErr(err error, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rolectl.ErrRoleNotFound):
		return errors.Wrapf(ErrRoleNotFound, "%q", key)
	case errors.Is(err, rolectl.ErrTenantEmpty):
		return errors.Wrap(ErrInvalidInput, err.Error())
	default:
		return fmt.Errorf("failed to load role: %w", err)
	}
}

func validateScope(scope models.RoleScope) error {
	if err := validateVar(string(scope.Type), "oneof=all store department custom"); err != nil {
		return errors.Wrapf(ErrInvalidInput, "unknown scope type %q", scope.Type)
	}

	return nil
}
