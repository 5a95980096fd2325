// Package check serves one-shot authorization decisions to trusted services.
package check

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/pkg/errors"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/web/handler"
)

const (
	// Path is the path of the check endpoints.
	Path = handler.APIPath + "/check"

	// ModeAll requires every permission.
	ModeAll = "all"
	// ModeAny requires one of the permissions.
	ModeAny = "any"
)

// Principal identifies the user a decision is made for.
type Principal struct {
	TenantID string `json:"tenantId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
}

// PermissionRequest asks for module permissions.
type PermissionRequest struct {
	Principal
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=all any"`
}

// CategoryRequest asks for a category action.
type CategoryRequest struct {
	Principal
	CategoryID string `json:"categoryId" validate:"required"`
	Action     string `json:"action" validate:"required"`
}

// FormRequest asks for a form.
type FormRequest struct {
	Principal
	Form string `json:"form" validate:"required"`
}

// RouteRequest asks for an API route.
type RouteRequest struct {
	Principal
	Route  string `json:"route" validate:"required,startswith=/"`
	Method string `json:"method" validate:"required"`
}

// Service is the check handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	engine    *authz.Engine
	validator *validator.Validate
}

// Handler is the check handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the check handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, engine *authz.Engine) error {
	if app == nil || cfg == nil || engine == nil {
		return errors.New(handler.ErrNilACEMsg)
	}

	s.cfg = cfg
	s.engine = engine
	s.validator = validator.New(validator.WithRequiredStructEnabled())

	app.Route(Path, func(router fiber.Router) {
		router.Post(handler.RouterRootPath, s.Permissions)
		router.Post("/category", s.Category)
		router.Post("/form", s.Form)
		router.Post("/route", s.Route)
	})

	return nil
}

// Permissions decides a permission request. The default mode is all.
func (s *Service) Permissions(c fiber.Ctx) error {
	var req PermissionRequest
	if err := s.bind(c, &req); err != nil {
		return handler.Error(c, err)
	}

	check := s.engine.HasAllPermissions
	if req.Mode == ModeAny {
		check = s.engine.HasAnyPermission
	}

	d, err := check(c.Context(), req.TenantID, req.UserID, req.Permissions...)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(handler.NewDecision(d))
}

// Category decides a category request.
func (s *Service) Category(c fiber.Ctx) error {
	var req CategoryRequest
	if err := s.bind(c, &req); err != nil {
		return handler.Error(c, err)
	}

	d, err := s.engine.Categories().CheckPermission(c.Context(), req.TenantID, req.UserID, req.CategoryID,
		authz.CategoryAction(req.Action))
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(handler.NewDecision(d))
}

// Form decides a form request.
func (s *Service) Form(c fiber.Ctx) error {
	var req FormRequest
	if err := s.bind(c, &req); err != nil {
		return handler.Error(c, err)
	}

	d, err := s.engine.Forms().HasFormAccess(c.Context(), req.TenantID, req.UserID, req.Form)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(handler.NewDecision(d))
}

// Route decides a route request.
func (s *Service) Route(c fiber.Ctx) error {
	var req RouteRequest
	if err := s.bind(c, &req); err != nil {
		return handler.Error(c, err)
	}

	d, err := s.engine.Forms().HasRouteAccess(c.Context(), req.TenantID, req.UserID, req.Route, req.Method)
	if err != nil {
		return handler.Error(c, err)
	}

	return c.JSON(handler.NewDecision(d))
}

func (s *Service) bind(c fiber.Ctx, out any) error {
	if err := c.Bind().JSON(out); err != nil {
		return errors.Wrap(authz.ErrInvalidInput, err.Error())
	}

	if err := s.validator.Struct(out); err != nil {
		return errors.Wrap(authz.ErrInvalidInput, err.Error())
	}

	return nil
}
