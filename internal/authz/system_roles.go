package authz

import (
	"context"

	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// SystemRolePrefix starts the code of every system role. Custom roles cannot use it.
const SystemRolePrefix = "sys-"

// Codes of the system roles.
const (
	SystemRoleOwner   = SystemRolePrefix + "owner"
	SystemRoleAdmin   = SystemRolePrefix + "admin"
	SystemRoleManager = SystemRolePrefix + "manager"
	SystemRoleCashier = SystemRolePrefix + "cashier"
	SystemRoleViewer  = SystemRolePrefix + "viewer"
)

// SystemRoles are seeded into every tenant and cannot be changed through the RoleStore.
func SystemRoles() []CreateRoleInput {
	return []CreateRoleInput{
		{
			Code: SystemRoleOwner, Name: "Owner", Description: "Full access to the tenant",
			PermissionCodes: []string{GlobalCode},
		},
		{
			Code: SystemRoleAdmin, Name: "Administrator", Description: "Manages the tenant except billing",
			PermissionCodes: []string{
				"product:*", "category:*", "inventory:*", "pos:*", "sale:*", "customer:*",
				"supplier:*", "purchase:*", "invoice:*", "report:*", "dashboard:*", "store:*",
				"user:*", "role:*", "webhook:*", "settings:*",
			},
		},
		{
			Code: SystemRoleManager, Name: "Store manager", Description: "Runs stores and stock",
			PermissionCodes: []string{
				"product:*", "category:*", "inventory:*", "pos:*", "sale:*", "customer:*",
				"supplier:read", "purchase:*", "invoice:*", "report:*", "dashboard:read",
			},
			Scope: &models.RoleScope{Type: models.ScopeStore},
		},
		{
			Code: SystemRoleCashier, Name: "Cashier", Description: "Sells at the point of sale",
			PermissionCodes: []string{
				"pos:sale", "pos:open_drawer", "pos:close_shift", "product:read", "customer:read",
				"customer:create", "sale:read",
			},
			Scope: &models.RoleScope{Type: models.ScopeStore},
		},
		{
			Code: SystemRoleViewer, Name: "Viewer", Description: "Read only access",
			PermissionCodes: []string{
				"product:read", "category:read", "inventory:read", "sale:read", "customer:read",
				"report:read", "dashboard:read",
			},
		},
	}
}

// SeedSystemRoles creates the missing system roles of a tenant.
// The catalog must be seeded first. Existing roles are left untouched.
func (s *RoleStore) SeedSystemRoles(ctx context.Context, tenantID string) ([]models.Role, error) {
	var created []models.Role

	for _, in := range SystemRoles() {
		_, err := s.GetByCode(ctx, tenantID, in.Code)
		if err == nil {
			continue
		}

		if !errors.Is(err, ErrRoleNotFound) {
			return created, err
		}

		role, err := s.create(ctx, tenantID, in, models.RoleCategorySystem, true)
		if err != nil {
			return created, errors.Wrapf(err, "seed role %s", in.Code)
		}

		created = append(created, *role)
	}

	return created, nil
}
