package authz

import (
	"context"
	"fmt"

	rolectl "github.com/GenziCode/genzi-rms-sub003/internal/db/controller/role"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// permissionSource resolves the effective permissions of a user.
type permissionSource interface {
	GetUserPermissions(ctx context.Context, tenantID, userID string) (GrantSet, error)
}

// Aggregator computes effective permissions from the assignment ledger and the roles.
// Results are not cached: the store is the source of truth and callers keep the set
// for the duration of one request.
type Aggregator struct {
	*deps
	ledger *Ledger
}

func newAggregator(d *deps, ledger *Ledger) *Aggregator {
	return &Aggregator{deps: d, ledger: ledger}
}

// GetUserRoles returns the active roles of the user's valid, active assignments.
func (a *Aggregator) GetUserRoles(ctx context.Context, tenantID, userID string) ([]models.Role, error) {
	as, err := a.ledger.ListUserAssignments(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(as))
	seen := make(map[string]struct{}, len(as))

	for _, asg := range as {
		if !asg.IsActive {
			continue
		}

		if _, ok := seen[asg.RoleID]; ok {
			continue
		}

		seen[asg.RoleID] = struct{}{}
		ids = append(ids, asg.RoleID)
	}

	roles, err := rolectl.ListByIDs(a.conn(ctx), tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	active := roles[:0]

	for _, r := range roles {
		if r.IsActive {
			active = append(active, r)
		}
	}

	return active, nil
}

// GetUserPermissions returns the union of the permissions of the user's roles.
// A user without valid assignments gets an empty set.
func (a *Aggregator) GetUserPermissions(ctx context.Context, tenantID, userID string) (GrantSet, error) {
	roles, err := a.GetUserRoles(ctx, tenantID, userID)
	if err != nil {
		return GrantSet{}, err
	}

	set := NewGrantSet()

	for _, r := range roles {
		for i := range r.Permissions {
			g, ok := GrantOf(&r.Permissions[i])
			if !ok {
				a.log.Warn().Str("tenant_id", tenantID).Str("role", r.Code).
					Str("permission", r.Permissions[i].Code).Msg("skipping invalid catalog entry")

				continue
			}

			set.add(g)
		}
	}

	return set, nil
}
