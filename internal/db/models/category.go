package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a node of a tenant's product category tree.
// The authorization engine creates and moves categories and reads parent links.
type Category struct {
	ID        string  `gorm:"primaryKey;size:36"`
	TenantID  string  `gorm:"size:64;not null;index"`
	ParentID  *string `gorm:"size:36;index"`
	Name      string  `gorm:"size:150;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Category model.
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate assigns a UUID when none was set.
func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	return nil
}

// CategoryPermission holds the explicit grants of one user on one category.
// A row never has an empty permission list; the controller deletes it instead.
type CategoryPermission struct {
	ID         string   `gorm:"primaryKey;size:36"`
	TenantID   string   `gorm:"size:64;not null;uniqueIndex:idx_category_permissions_key"`
	UserID     string   `gorm:"size:64;not null;uniqueIndex:idx_category_permissions_key"`
	CategoryID string   `gorm:"size:36;not null;uniqueIndex:idx_category_permissions_key"`
	Actions    []string `gorm:"serializer:json;not null"`
	GrantedBy  string   `gorm:"size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName specifies the database table name for the CategoryPermission model.
func (CategoryPermission) TableName() string {
	return "category_permissions"
}

// BeforeCreate assigns a UUID when none was set.
func (c *CategoryPermission) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	return nil
}

// Has reports whether the action is granted explicitly.
func (c *CategoryPermission) Has(action string) bool {
	for _, a := range c.Actions {
		if a == action {
			return true
		}
	}

	return false
}
