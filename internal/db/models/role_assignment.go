package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleAssignment binds a role to a user within a tenant.
// Removing a role from a user sets ExpiresAt instead of deleting the row, so the table
// doubles as the assignment history.
type RoleAssignment struct {
	// ID is the unique identifier for the assignment (UUID).
	ID string `gorm:"primaryKey;size:36"`
	// TenantID is the owning tenant.
	TenantID string `gorm:"size:64;not null;index:idx_assignments_user"`
	// UserID is the user holding the role.
	UserID string `gorm:"size:64;not null;index:idx_assignments_user"`
	// RoleID is the assigned role.
	RoleID string `gorm:"size:36;not null;index"`
	// AssignedBy is the user that created or last refreshed the assignment.
	AssignedBy string `gorm:"size:64"`
	// AssignedAt is the time of the last assignment or refresh.
	AssignedAt time.Time `gorm:"not null"`
	// ExpiresAt ends the assignment. Nil means it never expires.
	ExpiresAt *time.Time `gorm:"index"`
	// ScopeOverride replaces the role scope for this user when set.
	ScopeOverride *RoleScope `gorm:"serializer:json"`
	// IsActive is false for assignments disabled by an administrator.
	IsActive bool `gorm:"not null"`
	// CreatedAt is the timestamp when the row was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the row was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the RoleAssignment model.
func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// BeforeCreate assigns a UUID when none was set.
func (a *RoleAssignment) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return nil
}
