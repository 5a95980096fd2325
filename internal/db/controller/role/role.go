// Package role provides tenant scoped CRUD operations for roles and their resolved permissions.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
)

const (
	tenantQueryPattern     = "tenant_id = ?"
	tenantIDQueryPattern   = "tenant_id = ? AND id = ?"
	tenantCodeQueryPattern = "tenant_id = ? AND code = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleCodeEmpty is returned when attempting to create a role with an empty code.
	ErrRoleCodeEmpty = errors.New("role code cannot be empty")
	// ErrTenantEmpty is returned when the tenant id is missing.
	ErrTenantEmpty = errors.New("tenant id cannot be empty")
	// ErrRoleAlreadyExists is returned when the tenant already has a role with the same code.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a role with its permissions by ID.
func Get(db *gorm.DB, tenantID, id string) (*models.Role, error) {
	return first(db, tenantID, tenantIDQueryPattern, id)
}

// GetByCode retrieves a role with its permissions by code.
func GetByCode(db *gorm.DB, tenantID, code string) (*models.Role, error) {
	return first(db, tenantID, tenantCodeQueryPattern, code)
}

func first(db *gorm.DB, tenantID, query, value string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var role models.Role
	result := db.Where(query, tenantID, value).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	roles := []models.Role{role}
	if err := LoadPermissions(db, roles); err != nil {
		return nil, err
	}

	return &roles[0], nil
}

// List retrieves all roles of a tenant ordered by code.
func List(db *gorm.DB, tenantID string) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if tenantID == "" {
		return nil, ErrTenantEmpty
	}

	var roles []models.Role
	if err := db.Where(tenantQueryPattern, tenantID).Order("code").Find(&roles).Error; err != nil {
		return nil, err
	}

	if err := LoadPermissions(db, roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// ListByIDs retrieves the roles with the given IDs. Missing IDs are skipped.
func ListByIDs(db *gorm.DB, tenantID string, ids []string) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if len(ids) == 0 {
		return []models.Role{}, nil
	}

	var roles []models.Role
	if err := db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&roles).Error; err != nil {
		return nil, err
	}

	if err := LoadPermissions(db, roles); err != nil {
		return nil, err
	}

	return roles, nil
}

// LoadPermissions fills the Permissions of every role in place.
func LoadPermissions(db *gorm.DB, roles []models.Role) error {
	if db == nil {
		return ErrDBNil
	}
	if len(roles) == 0 {
		return nil
	}

	roleIDs := make([]string, len(roles))
	for i := range roles {
		roleIDs[i] = roles[i].ID
		roles[i].Permissions = []models.Permission{}
	}

	var links []models.RolePermission
	if err := db.Where("role_id IN ?", roleIDs).Find(&links).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	permIDs := make([]uint, 0, len(links))
	for _, l := range links {
		permIDs = append(permIDs, l.PermissionID)
	}

	var perms []models.Permission
	if err := db.Where("id IN ?", permIDs).Order("code").Find(&perms).Error; err != nil {
		return err
	}

	rolesOf := make(map[uint][]string, len(links))
	for _, l := range links {
		rolesOf[l.PermissionID] = append(rolesOf[l.PermissionID], l.RoleID)
	}

	// perms are ordered by code, so every role gets its permissions ordered by code
	byRole := make(map[string][]models.Permission, len(roles))
	for _, p := range perms {
		for _, roleID := range rolesOf[p.ID] {
			byRole[roleID] = append(byRole[roleID], p)
		}
	}

	for i := range roles {
		if perms, ok := byRole[roles[i].ID]; ok {
			roles[i].Permissions = perms
		}
	}

	return nil
}

// Create creates a role referencing the given catalog permissions.
func Create(db *gorm.DB, role *models.Role, perms []models.Permission) error {
	if db == nil {
		return ErrDBNil
	}
	if role.TenantID == "" {
		return ErrTenantEmpty
	}
	if role.Code == "" {
		return ErrRoleCodeEmpty
	}

	// Check if role already exists
	var existing models.Role
	result := db.Where(tenantCodeQueryPattern, role.TenantID, role.Code).First(&existing)
	if result.Error == nil {
		return ErrRoleAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}

		return SetPermissions(tx, role, perms)
	})
}

// Update saves the role attributes. Permissions are left untouched, see SetPermissions.
func Update(db *gorm.DB, role *models.Role) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Save(role)
	if result.Error != nil {
		return result.Error
	}

	return nil
}

// SetPermissions replaces the permission references of a role.
func SetPermissions(db *gorm.DB, role *models.Role, perms []models.Permission) error {
	if db == nil {
		return ErrDBNil
	}

	if err := db.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	links := make([]models.RolePermission, 0, len(perms))
	seen := make(map[uint]struct{}, len(perms))

	for _, p := range perms {
		if _, ok := seen[p.ID]; ok {
			continue
		}

		seen[p.ID] = struct{}{}
		links = append(links, models.RolePermission{RoleID: role.ID, PermissionID: p.ID})
	}

	if len(links) > 0 {
		if err := db.Create(&links).Error; err != nil {
			return err
		}
	}

	role.Permissions = perms

	return nil
}

// Delete deletes a role and its permission references.
func Delete(db *gorm.DB, tenantID, id string) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where(tenantIDQueryPattern, tenantID, id).Delete(&models.Role{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}

		return tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error
	})
}
