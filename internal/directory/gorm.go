package directory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

// Gorm reads members from the users table.
type Gorm struct {
	db *gorm.DB
}

// NewGorm creates a directory on the users table.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

// Lookup implements Directory.
func (g *Gorm) Lookup(ctx context.Context, tenantID, userID string) (*Member, error) {
	var user models.User

	err := g.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &Member{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Role:     user.MemberRole,
		Active:   user.Active,
	}, nil
}
