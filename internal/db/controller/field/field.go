// Package field provides tenant scoped access to field visibility definitions.
package field

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

var (
	// ErrFieldNotFound is returned when a field definition is not found.
	ErrFieldNotFound = errors.New("field not found")
	// ErrFieldKeyEmpty is returned when the form or control name is empty.
	ErrFieldKeyEmpty = errors.New("form name and control name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ListForForm retrieves the field definitions of a form ordered by control name.
func ListForForm(db *gorm.DB, tenantID, formName string) ([]models.FieldPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var fs []models.FieldPermission
	result := db.Where("tenant_id = ? AND form_name = ?", tenantID, formName).Order("control_name").Find(&fs)
	if result.Error != nil {
		return nil, result.Error
	}

	return fs, nil
}

// Get retrieves one field definition.
func Get(db *gorm.DB, tenantID, formName, controlName string) (*models.FieldPermission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var f models.FieldPermission
	result := db.Where("tenant_id = ? AND form_name = ? AND control_name = ?", tenantID, formName, controlName).First(&f)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, result.Error
	}

	return &f, nil
}

// Upsert creates the field or replaces the definition of the same control.
func Upsert(db *gorm.DB, f *models.FieldPermission) error {
	if db == nil {
		return ErrDBNil
	}
	if f.FormName == "" || f.ControlName == "" {
		return ErrFieldKeyEmpty
	}

	existing, err := Get(db, f.TenantID, f.FormName, f.ControlName)
	switch {
	case errors.Is(err, ErrFieldNotFound):
		return db.Create(f).Error
	case err != nil:
		return err
	}

	f.ID = existing.ID
	f.CreatedAt = existing.CreatedAt

	return db.Save(f).Error
}

// Delete removes one field definition.
func Delete(db *gorm.DB, tenantID, formName, controlName string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where("tenant_id = ? AND form_name = ? AND control_name = ?", tenantID, formName, controlName).
		Delete(&models.FieldPermission{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFieldNotFound
	}

	return nil
}
