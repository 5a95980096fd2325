package models

import "time"

// Elevated member roles bypass category level checks.
const (
	// MemberRoleOwner is the tenant owner.
	MemberRoleOwner = "owner"
	// MemberRoleAdmin is a tenant administrator.
	MemberRoleAdmin = "admin"
	// MemberRoleMember is a regular tenant member.
	MemberRoleMember = "member"
)

// User represents a tenant member as seen by the user directory.
// Accounts and credentials are owned by the identity service; this table only carries
// what authorization needs: membership, the member role flag and the active state.
type User struct {
	// ID is the user identifier issued by the identity service.
	ID string `gorm:"primaryKey;size:64"`
	// TenantID is the tenant the user belongs to.
	TenantID string `gorm:"primaryKey;size:64"`
	// Active indicates whether the membership is active.
	Active bool
	// Username is the login name, kept for logs and audit output.
	Username string `gorm:"size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// MemberRole is owner, admin or member.
	MemberRole string `gorm:"size:20;not null;default:'member'"`
	// ExternalID is the directory identifier for LDAP synchronised users.
	ExternalID string `gorm:"size:255"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}
