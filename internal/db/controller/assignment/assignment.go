// Package assignment provides access to the role assignment ledger.
//
// Validity is decided by the caller supplied time: a row is valid when expires_at is
// NULL or after now. The queries never rely on expired rows having been swept.
package assignment

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	validQueryPattern = "(expires_at IS NULL OR expires_at > ?)"
)

var (
	// ErrAssignmentNotFound is returned when no matching assignment exists.
	ErrAssignmentNotFound = errors.New("role assignment not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// FindValid retrieves the currently valid assignment of a role to a user.
// When several valid rows exist the most recently assigned one is returned.
func FindValid(db *gorm.DB, tenantID, userID, roleID string, now time.Time) (*models.RoleAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var a models.RoleAssignment
	result := db.Where("tenant_id = ? AND user_id = ? AND role_id = ?", tenantID, userID, roleID).
		Where(validQueryPattern, now).
		Order("assigned_at DESC").
		First(&a)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, result.Error
	}

	return &a, nil
}

// ListValidForUser retrieves the valid assignments of a user.
func ListValidForUser(db *gorm.DB, tenantID, userID string, now time.Time) ([]models.RoleAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var as []models.RoleAssignment
	result := db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Where(validQueryPattern, now).
		Order("assigned_at").
		Find(&as)
	if result.Error != nil {
		return nil, result.Error
	}

	return as, nil
}

// ListValidForRole retrieves the valid assignments of a role.
func ListValidForRole(db *gorm.DB, tenantID, roleID string, now time.Time) ([]models.RoleAssignment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var as []models.RoleAssignment
	result := db.Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		Where(validQueryPattern, now).
		Order("assigned_at").
		Find(&as)
	if result.Error != nil {
		return nil, result.Error
	}

	return as, nil
}

// CountValidForRole counts the valid assignments referencing a role.
func CountValidForRole(db *gorm.DB, tenantID, roleID string, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	result := db.Model(&models.RoleAssignment{}).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		Where(validQueryPattern, now).
		Count(&n)
	if result.Error != nil {
		return 0, result.Error
	}

	return n, nil
}

// Save creates the assignment or updates it when it already has an ID.
func Save(db *gorm.DB, a *models.RoleAssignment) error {
	if db == nil {
		return ErrDBNil
	}

	if a.ID == "" {
		return db.Create(a).Error
	}

	return db.Save(a).Error
}

// ExpireValid ends every valid assignment of a role to a user at now.
// It returns ErrAssignmentNotFound when nothing was valid.
func ExpireValid(db *gorm.DB, tenantID, userID, roleID string, now time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Model(&models.RoleAssignment{}).
		Where("tenant_id = ? AND user_id = ? AND role_id = ?", tenantID, userID, roleID).
		Where(validQueryPattern, now).
		Update("expires_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrAssignmentNotFound
	}

	return result.RowsAffected, nil
}

// DeleteExpiredBefore physically removes assignments that expired before cutoff.
func DeleteExpiredBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).Delete(&models.RoleAssignment{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
