// Package category provides access to categories and the per user category permission overlay.
package category

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	permissionKeyQueryPattern = "tenant_id = ? AND user_id = ? AND category_id = ?"
)

var (
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrPermissionNotFound is returned when a user has no permission document for a category.
	ErrPermissionNotFound = errors.New("category permission not found")
	// ErrActionsEmpty is returned when attempting to store a permission document without actions.
	ErrActionsEmpty = errors.New("category permission actions cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a category by ID.
func Get(db *gorm.DB, tenantID, id string) (*models.Category, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var c models.Category
	result := db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&c)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, result.Error
	}

	return &c, nil
}

// Create creates a category.
func Create(db *gorm.DB, c *models.Category) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Create(c).Error
}

// SetParent moves a category under parentID. A nil parentID makes it a root.
func SetParent(db *gorm.DB, tenantID, id string, parentID *string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.Category{}).Where("tenant_id = ? AND id = ?", tenantID, id).Update("parent_id", parentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// GetPermission retrieves the permission document of a user on a category.
func GetPermission(db *gorm.DB, tenantID, userID, categoryID string) (*models.CategoryPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.CategoryPermission
	result := db.Where(permissionKeyQueryPattern, tenantID, userID, categoryID).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, result.Error
	}

	return &p, nil
}

// ListPermissions retrieves every permission document of a user.
func ListPermissions(db *gorm.DB, tenantID, userID string) ([]models.CategoryPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var ps []models.CategoryPermission
	result := db.Where("tenant_id = ? AND user_id = ?", tenantID, userID).Order("category_id").Find(&ps)
	if result.Error != nil {
		return nil, result.Error
	}

	return ps, nil
}

// SavePermission creates or updates the permission document of p's user and category.
func SavePermission(db *gorm.DB, p *models.CategoryPermission) error {
	if db == nil {
		return ErrDBNil
	}
	if len(p.Actions) == 0 {
		return ErrActionsEmpty
	}

	existing, err := GetPermission(db, p.TenantID, p.UserID, p.CategoryID)
	switch {
	case errors.Is(err, ErrPermissionNotFound):
		return db.Create(p).Error
	case err != nil:
		return err
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	return db.Save(p).Error
}

// DeletePermission removes the permission document of a user on a category.
func DeletePermission(db *gorm.DB, tenantID, userID, categoryID string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(permissionKeyQueryPattern, tenantID, userID, categoryID).Delete(&models.CategoryPermission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPermissionNotFound
	}

	return nil
}
