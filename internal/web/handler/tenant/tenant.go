// Package tenant serves read-only views of a tenant's authorization state.
package tenant

import (
	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/db/models"
	"github.com/GenziCode/genzi-rms-sub003/internal/web/handler"
	authzmw "github.com/GenziCode/genzi-rms-sub003/internal/web/middleware/authz"
)

// Path is the path of the tenant endpoints.
const Path = handler.APIPath + "/tenants/:tenant"

// Permissions required by the tenant endpoints.
const (
	PermRoleRead = "role:read"
	PermUserRead = "user:read"
)

// Role is the role view.
type Role struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	IsSystem    bool     `json:"isSystem"`
	IsActive    bool     `json:"isActive"`
	Permissions []string `json:"permissions"`
}

// Permissions is the effective permission view of a user.
type Permissions struct {
	Global      bool     `json:"global"`
	Permissions []string `json:"permissions"`
}

// Form is the form view.
type Form struct {
	Name     string `json:"name"`
	Caption  string `json:"caption"`
	Category string `json:"category"`
	Route    string `json:"route,omitempty"`
}

// Service is the tenant handler service.
type Service struct {
	handler.Service
	cfg    *config.Config
	engine *authz.Engine
}

// Handler is the tenant handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the tenant handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, engine *authz.Engine) error {
	if app == nil || cfg == nil || engine == nil {
		return errors.New(handler.ErrNilACEMsg)
	}

	s.cfg = cfg
	s.engine = engine

	sameTenant := authzmw.RequireTenantParam("tenant")
	readRoles := authzmw.RequirePermission(engine, PermRoleRead)
	readUsers := authzmw.RequirePermission(engine, PermUserRead)

	app.Route(Path, func(router fiber.Router) {
		router.Get("/roles", sameTenant, readRoles, s.Roles)
		router.Get("/users/:user/roles", sameTenant, readUsers, s.UserRoles)
		router.Get("/users/:user/permissions", sameTenant, readUsers, s.UserPermissions)
		router.Get("/users/:user/categories", sameTenant, readUsers, s.UserCategories)
		router.Get("/users/:user/forms", sameTenant, readUsers, s.UserForms)
	})

	return nil
}

// Roles lists the roles of the tenant.
func (s *Service) Roles(c fiber.Ctx) error {
	roles, err := s.engine.Roles().List(c.Context(), c.Params("tenant"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(toRoles(roles))
}

// UserRoles lists the active roles a user holds through valid assignments.
func (s *Service) UserRoles(c fiber.Ctx) error {
	roles, err := s.engine.Aggregator().GetUserRoles(c.Context(), c.Params("tenant"), c.Params("user"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(toRoles(roles))
}

// UserPermissions returns the effective permissions of a user.
func (s *Service) UserPermissions(c fiber.Ctx) error {
	grants, err := s.engine.GetUserPermissions(c.Context(), c.Params("tenant"), c.Params("user"))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(Permissions{Global: grants.IsGlobal(), Permissions: grants.Codes()})
}

// UserCategories lists the categories a user holds explicit grants on.
// The action query parameter defaults to read.
func (s *Service) UserCategories(c fiber.Ctx) error {
	action := authz.CategoryAction(c.Query("action", string(authz.CategoryRead)))

	ids, err := s.engine.Categories().ListAccessibleCategories(c.Context(), c.Params("tenant"), c.Params("user"), action)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(ids)
}

// UserForms lists the active forms a user may open.
func (s *Service) UserForms(c fiber.Ctx) error {
	forms, err := s.engine.Forms().ListAccessibleForms(c.Context(), c.Params("tenant"), c.Params("user"))
	if err != nil {
		return handler.Error(c, err)
	}

	out := make([]Form, 0, len(forms))
	for _, f := range forms {
		out = append(out, Form{Name: f.FormName, Caption: f.FormCaption, Category: f.FormCategory, Route: f.Route})
	}

	return c.JSON(out)
}

func toRoles(roles []models.Role) []Role {
	out := make([]Role, 0, len(roles))
	for i := range roles {
		out = append(out, Role{
			ID:          roles[i].ID,
			Code:        roles[i].Code,
			Name:        roles[i].Name,
			IsSystem:    roles[i].IsSystemRole,
			IsActive:    roles[i].IsActive,
			Permissions: roles[i].PermissionCodes(),
		})
	}

	return out
}
