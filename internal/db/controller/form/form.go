// Package form provides tenant scoped access to form definitions.
package form

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	tenantNameQueryPattern = "tenant_id = ? AND form_name = ?"
)

var (
	// ErrFormNotFound is returned when a form is not found.
	ErrFormNotFound = errors.New("form not found")
	// ErrFormNameEmpty is returned when a form name is empty.
	ErrFormNameEmpty = errors.New("form name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a form by name.
func Get(db *gorm.DB, tenantID, name string) (*models.FormPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrFormNameEmpty
	}

	var f models.FormPermission
	result := db.Where(tenantNameQueryPattern, tenantID, name).First(&f)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, result.Error
	}

	return &f, nil
}

// List retrieves every form of a tenant ordered by name, inactive ones included.
func List(db *gorm.DB, tenantID string) ([]models.FormPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var fs []models.FormPermission
	if err := db.Where("tenant_id = ?", tenantID).Order("form_name").Find(&fs).Error; err != nil {
		return nil, err
	}

	return fs, nil
}

// Upsert creates the form or replaces the definition with the same name.
func Upsert(db *gorm.DB, f *models.FormPermission) error {
	if db == nil {
		return ErrDBNil
	}
	if f.FormName == "" {
		return ErrFormNameEmpty
	}

	existing, err := Get(db, f.TenantID, f.FormName)
	switch {
	case errors.Is(err, ErrFormNotFound):
		return db.Create(f).Error
	case err != nil:
		return err
	}

	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt

	return db.Save(f).Error
}
