package models

import "time"

// PermissionCategory groups catalog entries by the kind of capability they grant.
type PermissionCategory string

const (
	// PermissionCategoryCRUD marks plain create/read/update/delete permissions.
	PermissionCategoryCRUD PermissionCategory = "crud"
	// PermissionCategoryAction marks domain actions such as a refund or a stock transfer approval.
	PermissionCategoryAction PermissionCategory = "action"
	// PermissionCategoryReport marks report viewing and exporting permissions.
	PermissionCategoryReport PermissionCategory = "report"
	// PermissionCategoryAdmin marks tenant administration permissions, including the global wildcard.
	PermissionCategoryAdmin PermissionCategory = "admin"
)

// Permission represents one entry of the global permission catalog.
// Catalog entries are tenant independent. Roles reference them by ID, so an entry
// must not be renamed once a role points at it.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Code is the unique lowercase permission identifier in module:action format (e.g., "product:read").
	// The single entry "*" is the global wildcard.
	Code string `gorm:"unique;size:100;not null"`
	// Name is a human-readable label for the permission.
	Name string `gorm:"size:150;not null"`
	// Module is the part of the code before the colon (e.g., "product").
	Module string `gorm:"size:50;not null;index"`
	// Action is the part of the code after the colon (e.g., "read").
	Action string `gorm:"size:50;not null"`
	// Category classifies the permission (crud, action, report or admin).
	Category PermissionCategory `gorm:"type:varchar(20);not null;default:'crud'"`
	// IsSystem marks entries seeded by the platform.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the permission was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
func (Permission) TableName() string {
	return "permissions"
}
