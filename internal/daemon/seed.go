package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/db"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// seed defines the built in permissions and the system roles of every known tenant.
func seed(ctx context.Context, conn *gorm.DB, engine *authz.Engine) error {
	if err := engine.Catalog().Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed permission catalog: %w", err)
	}

	var tenants []string
	if err := conn.WithContext(ctx).Model(&models.User{}).Distinct().Pluck("tenant_id", &tenants).Error; err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	for _, tenantID := range tenants {
		created, err := engine.Roles().SeedSystemRoles(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to seed system roles of tenant %s: %w", tenantID, err)
		}

		if len(created) > 0 {
			log.Info().Str("tenant_id", tenantID).Int("count", len(created)).Msg("system roles seeded")
		}
	}

	return nil
}

// Migrate updates the schema and seeds the catalog and the system roles.
func (d *Daemon) Migrate(ctx context.Context) error {
	if err := db.Migrate(d.db); err != nil {
		return err
	}

	return seed(ctx, d.db, d.engine)
}
