package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	assignmentctl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/assignment"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// AssignInput binds a role to a user.
type AssignInput struct {
	RoleID        string `validate:"required"`
	AssignedBy    string
	ExpiresAt     *time.Time
	ScopeOverride *models.RoleScope
}

// IsValid reports whether an assignment counts at now: it has no expiry or expires after now.
func IsValid(a *models.RoleAssignment, now time.Time) bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}

// Ledger records which roles users hold.
type Ledger struct {
	*deps
	roles *RoleStore
}

func newLedger(d *deps, roles *RoleStore) *Ledger {
	return &Ledger{deps: d, roles: roles}
}

// Assign gives a role to a user. A currently valid assignment of the same role is
// refreshed in place instead of duplicated. Expired assignments stay as history.
func (l *Ledger) Assign(ctx context.Context, tenantID, userID string, in AssignInput) (*models.RoleAssignment, error) {
	if tenantID == "" || userID == "" {
		return nil, errors.Wrap(ErrInvalidInput, "tenant id and user id are required")
	}

	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.ScopeOverride != nil {
		if err := validateScope(*in.ScopeOverride); err != nil {
			return nil, err
		}
	}

	now := l.clock.Now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, errors.Wrapf(ErrExpiryInPast, "%s", in.ExpiresAt.Format(time.RFC3339))
	}

	role, err := l.roles.Get(ctx, tenantID, in.RoleID)
	if err != nil {
		return nil, err
	}

	db := l.conn(ctx)

	a, err := assignmentctl.FindValid(db, tenantID, userID, role.ID, now)

	switch {
	case errors.Is(err, assignmentctl.ErrAssignmentNotFound):
		a = &models.RoleAssignment{
			TenantID: tenantID,
			UserID:   userID,
			RoleID:   role.ID,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load role assignment: %w", err)
	}

	a.AssignedBy = in.AssignedBy
	a.AssignedAt = now
	a.ExpiresAt = in.ExpiresAt
	a.ScopeOverride = in.ScopeOverride
	a.IsActive = true

	if err = assignmentctl.Save(db, a); err != nil {
		return nil, fmt.Errorf("failed to save role assignment: %w", err)
	}

	ev := l.log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Str("role", role.Code)
	if a.ExpiresAt != nil {
		ev = ev.Time("expires_at", *a.ExpiresAt)
	}

	ev.Msg("role assigned")

	return a, nil
}

// Remove ends the valid assignments of a role to a user by setting their expiry to now.
func (l *Ledger) Remove(ctx context.Context, tenantID, userID, roleID string) error {
	_, err := assignmentctl.ExpireValid(l.conn(ctx), tenantID, userID, roleID, l.clock.Now())
	if errors.Is(err, assignmentctl.ErrAssignmentNotFound) {
		return errors.Wrapf(ErrAssignmentNotFound, "user %q role %q", userID, roleID)
	}

	if err != nil {
		return fmt.Errorf("failed to expire role assignment: %w", err)
	}

	l.log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Str("role_id", roleID).Msg("role removed")

	return nil
}

// ListUserAssignments returns the valid assignments of a user.
func (l *Ledger) ListUserAssignments(ctx context.Context, tenantID, userID string) ([]models.RoleAssignment, error) {
	now := l.clock.Now()

	as, err := assignmentctl.ListValidForUser(l.conn(ctx), tenantID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	return filterValid(as, now), nil
}

// ListRoleAssignments returns the valid assignments of a role.
func (l *Ledger) ListRoleAssignments(ctx context.Context, tenantID, roleID string) ([]models.RoleAssignment, error) {
	now := l.clock.Now()

	as, err := assignmentctl.ListValidForRole(l.conn(ctx), tenantID, roleID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load role assignments: %w", err)
	}

	return filterValid(as, now), nil
}

// filterValid re-checks expiry in memory so correctness never depends on the query alone.
func filterValid(as []models.RoleAssignment, now time.Time) []models.RoleAssignment {
	out := as[:0]

	for i := range as {
		if IsValid(&as[i], now) {
			out = append(out, as[i])
		}
	}

	return out
}
