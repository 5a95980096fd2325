package authz

import (
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

var crudActions = []string{"create", "read", "update", "delete"} //nolint:gochecknoglobals

// builtinModules lists the modules of the platform with their non crud actions.
var builtinModules = []struct { //nolint:gochecknoglobals
	module  string
	crud    bool
	actions map[string]models.PermissionCategory
}{
	{module: "product", crud: true, actions: map[string]models.PermissionCategory{
		"import": models.PermissionCategoryAction, "export": models.PermissionCategoryReport,
	}},
	{module: "category", crud: true},
	{module: "inventory", crud: true, actions: map[string]models.PermissionCategory{
		"adjust": models.PermissionCategoryAction, "transfer": models.PermissionCategoryAction,
		"approve_transfer": models.PermissionCategoryAction,
	}},
	{module: "pos", actions: map[string]models.PermissionCategory{
		"sale": models.PermissionCategoryAction, "refund": models.PermissionCategoryAction,
		"void": models.PermissionCategoryAction, "discount": models.PermissionCategoryAction,
		"open_drawer": models.PermissionCategoryAction, "close_shift": models.PermissionCategoryAction,
	}},
	{module: "sale", crud: true, actions: map[string]models.PermissionCategory{
		"export": models.PermissionCategoryReport,
	}},
	{module: "customer", crud: true},
	{module: "supplier", crud: true},
	{module: "purchase", crud: true, actions: map[string]models.PermissionCategory{
		"approve": models.PermissionCategoryAction,
	}},
	{module: "invoice", crud: true, actions: map[string]models.PermissionCategory{
		"send": models.PermissionCategoryAction, "export": models.PermissionCategoryReport,
	}},
	{module: "report", actions: map[string]models.PermissionCategory{
		"read": models.PermissionCategoryReport, "sales": models.PermissionCategoryReport,
		"inventory": models.PermissionCategoryReport, "export": models.PermissionCategoryReport,
	}},
	{module: "dashboard", actions: map[string]models.PermissionCategory{
		"read": models.PermissionCategoryReport,
	}},
	{module: "store", crud: true},
	{module: "user", crud: true, actions: map[string]models.PermissionCategory{
		"assign_role": models.PermissionCategoryAdmin,
	}},
	{module: "role", crud: true},
	{module: "webhook", crud: true},
	{module: "settings", actions: map[string]models.PermissionCategory{
		"read": models.PermissionCategoryAdmin, "update": models.PermissionCategoryAdmin,
	}},
}

// DefaultPermissions returns the built in catalog, the global wildcard included.
func DefaultPermissions() []PermissionInput {
	out := []PermissionInput{
		{Code: GlobalCode, Name: "All permissions", Category: models.PermissionCategoryAdmin, IsSystem: true},
	}

	for _, m := range builtinModules {
		if m.crud {
			for _, a := range crudActions {
				out = append(out, PermissionInput{
					Code:     m.module + ":" + a,
					Name:     a + " " + m.module,
					Category: models.PermissionCategoryCRUD,
					IsSystem: true,
				})
			}
		}

		for a, cat := range m.actions {
			out = append(out, PermissionInput{
				Code:     m.module + ":" + a,
				Name:     a + " " + m.module,
				Category: cat,
				IsSystem: true,
			})
		}
	}

	return out
}
