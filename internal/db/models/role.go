package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleCategory tells seeded system roles apart from tenant defined ones.
type RoleCategory string

const (
	// RoleCategorySystem marks roles seeded per tenant by the platform.
	RoleCategorySystem RoleCategory = "system"
	// RoleCategoryCustom marks roles created by a tenant administrator.
	RoleCategoryCustom RoleCategory = "custom"
)

// ScopeType is the kind of data scope a role or assignment applies to.
type ScopeType string

const (
	// ScopeAll applies to every store and department of the tenant.
	ScopeAll ScopeType = "all"
	// ScopeStore restricts to the listed stores.
	ScopeStore ScopeType = "store"
	// ScopeDepartment restricts to the listed departments.
	ScopeDepartment ScopeType = "department"
	// ScopeCustom carries free-form filters interpreted by the consuming module.
	ScopeCustom ScopeType = "custom"
)

// RoleScope describes which part of the tenant's data a role covers.
type RoleScope struct {
	Type          ScopeType      `json:"type"`
	StoreIDs      []string       `json:"storeIds,omitempty"`
	DepartmentIDs []string       `json:"departmentIds,omitempty"`
	Filters       map[string]any `json:"filters,omitempty"`
}

// Role represents a tenant scoped bundle of resolved catalog permissions.
// The permission references are stored in role_permissions and loaded into Permissions
// by the role controller.
type Role struct {
	// ID is the unique identifier for the role (UUID).
	ID string `gorm:"primaryKey;size:36"`
	// TenantID is the owning tenant.
	TenantID string `gorm:"size:64;not null;uniqueIndex:idx_roles_tenant_code"`
	// Code is the lowercase role code, unique per tenant (e.g., "cashier").
	Code string `gorm:"size:50;not null;uniqueIndex:idx_roles_tenant_code"`
	// Name is the display name of the role.
	Name string `gorm:"size:100;not null"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// Category is system for seeded roles and custom otherwise.
	Category RoleCategory `gorm:"type:varchar(20);not null;default:'custom'"`
	// ParentRoleID optionally points at the role this one was derived from.
	ParentRoleID *string `gorm:"size:36"`
	// Scope is the data scope of the role, stored as JSON.
	Scope RoleScope `gorm:"serializer:json"`
	// IsSystemRole marks roles that cannot be changed or deleted.
	IsSystemRole bool `gorm:"default:false"`
	// IsActive is false for disabled roles, which grant nothing.
	IsActive bool `gorm:"not null"`
	// Permissions holds the resolved catalog entries of the role.
	Permissions []Permission `gorm:"-"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}

// BeforeCreate assigns a UUID when none was set.
func (r *Role) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	return nil
}

// PermissionCodes returns the codes of the resolved permissions.
func (r *Role) PermissionCodes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}

	return codes
}
