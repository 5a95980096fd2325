// Package permission provides access to the global permission catalog table.
package permission

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	codeQueryPattern = "code = ?"
)

var (
	// ErrPermissionNotFound is returned when a permission is not found.
	ErrPermissionNotFound = errors.New("permission not found")
	// ErrPermissionCodeEmpty is returned when a permission code is empty.
	ErrPermissionCodeEmpty = errors.New("permission code cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a permission by its code.
func Get(db *gorm.DB, code string) (*models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if code == "" {
		return nil, ErrPermissionCodeEmpty
	}

	var p models.Permission
	result := db.Where(codeQueryPattern, code).First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, result.Error
	}

	return &p, nil
}

// List retrieves the whole catalog ordered by code.
func List(db *gorm.DB) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Order("code").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// ListByModule retrieves the permissions of one module ordered by code.
func ListByModule(db *gorm.DB, module string) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	if err := db.Where("module = ?", module).Order("code").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// ListByCodes retrieves the permissions with the given codes. Unknown codes are skipped.
func ListByCodes(db *gorm.DB, codes []string) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if len(codes) == 0 {
		return []models.Permission{}, nil
	}

	var perms []models.Permission
	if err := db.Where("code IN ?", codes).Order("code").Find(&perms).Error; err != nil {
		return nil, err
	}

	return perms, nil
}

// Upsert creates the permission or updates the entry with the same code.
// The ID of p is set to the stored row.
func Upsert(db *gorm.DB, p *models.Permission) error {
	if db == nil {
		return ErrDBNil
	}
	if p.Code == "" {
		return ErrPermissionCodeEmpty
	}

	var existing models.Permission
	result := db.Where(codeQueryPattern, p.Code).First(&existing)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return db.Create(p).Error
	}
	if result.Error != nil {
		return result.Error
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt

	return db.Save(p).Error
}
