package models

import "time"

// FormPermission maps an application form, and optionally an API route, to a module.
type FormPermission struct {
	// ID is the unique identifier for the form definition.
	ID uint `gorm:"primaryKey"`
	// TenantID is the owning tenant.
	TenantID string `gorm:"size:64;not null;uniqueIndex:idx_forms_tenant_name"`
	// FormName is the form identifier, unique per tenant (e.g., "product-edit").
	FormName string `gorm:"size:100;not null;uniqueIndex:idx_forms_tenant_name"`
	// FormCaption is the title shown in the UI.
	FormCaption string `gorm:"size:150"`
	// FormCategory groups forms in navigation menus.
	FormCategory string `gorm:"size:50"`
	// Module is the permission module guarding the form (e.g., "product").
	Module string `gorm:"size:50"`
	// Route is the API route prefix served by the form (e.g., "/api/products").
	Route string `gorm:"size:255;index"`
	// HTTPMethods lists the methods the route mapping applies to. Empty means any method.
	HTTPMethods []string `gorm:"serializer:json"`
	// IsActive is false for retired forms, which are treated as unknown.
	IsActive bool `gorm:"not null"`
	// CreatedAt is the timestamp when the form was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the form was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the FormPermission model.
func (FormPermission) TableName() string {
	return "form_permissions"
}

// FieldPermission describes the visibility of one control of a form.
type FieldPermission struct {
	// ID is the unique identifier for the field definition.
	ID uint `gorm:"primaryKey"`
	// TenantID is the owning tenant.
	TenantID string `gorm:"size:64;not null;uniqueIndex:idx_fields_form_control"`
	// FormName is the form the control belongs to.
	FormName string `gorm:"size:100;not null;uniqueIndex:idx_fields_form_control"`
	// ControlName is the control identifier, unique per form.
	ControlName string `gorm:"size:100;not null;uniqueIndex:idx_fields_form_control"`
	// ControlType is the UI control kind (text, number, select, ...).
	ControlType string `gorm:"size:30"`
	// FieldPath is the dotted path of the value in payloads. Empty means ControlName.
	FieldPath string `gorm:"size:255"`
	// IsVisible allows reading the field.
	IsVisible bool `gorm:"not null"`
	// IsEditable allows writing the field.
	IsEditable bool `gorm:"not null"`
	// IsRequired rejects payloads missing the field.
	IsRequired bool `gorm:"default:false"`
	// DefaultValue is substituted when a payload lacks the field.
	DefaultValue any `gorm:"serializer:json"`
	// ValidationRules holds validator tags applied to the value (e.g., "min=0,max=100").
	ValidationRules string `gorm:"size:255"`
	// CreatedAt is the timestamp when the field was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the field was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the FieldPermission model.
func (FieldPermission) TableName() string {
	return "field_permissions"
}

// Path returns the payload path of the field.
func (f *FieldPermission) Path() string {
	if f.FieldPath != "" {
		return f.FieldPath
	}

	return f.ControlName
}
