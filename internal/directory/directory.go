// Package directory looks up tenant membership for the category bypass check.
package directory

import (
	"context"
	"errors"
)

var (
	// ErrMemberNotFound is returned when the user is not a member of the tenant.
	ErrMemberNotFound = errors.New("tenant member not found")
	// ErrMultipleMembers is returned when a lookup matches more than one directory entry.
	ErrMultipleMembers = errors.New("multiple directory entries found")
)

// Member is a user's membership in a tenant.
type Member struct {
	TenantID string
	UserID   string
	Role     string // owner, admin or member
	Active   bool
}

// Directory is a read only user directory.
type Directory interface {
	Lookup(ctx context.Context, tenantID, userID string) (*Member, error)
}
