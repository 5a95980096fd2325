// Package models contains the gorm model definitions of the authorization engine.
package models

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Permission{},
		&Role{},
		&RolePermission{},
		&RoleAssignment{},
		&Category{},
		&CategoryPermission{},
		&FormPermission{},
		&FieldPermission{},
		&User{},
	}
}
