package authz

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
)

// Locals keys of the principal.
const (
	LocalTenantID = "tenantID"
	LocalUserID   = "userID"
)

// Locals keys set by AddPermissionsToLocals.
const (
	LocalPermissions   = "permissions"
	LocalHasPermission = "hasPermission"
)

// Headers read by PrincipalFromHeaders.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
)

// PrincipalFromHeaders stores the principal named by the tenant and user headers.
// The caller is trusted to have authenticated the user.
func PrincipalFromHeaders() fiber.Handler {
	return func(c fiber.Ctx) error {
		if tenantID, userID := c.Get(HeaderTenantID), c.Get(HeaderUserID); tenantID != "" && userID != "" {
			SetPrincipal(c, tenantID, userID)
		}

		return c.Next()
	}
}

// RequireTenantParam rejects principals of a tenant other than the one in the route parameter.
func RequireTenantParam(param string) fiber.Handler {
	return func(c fiber.Ctx) error {
		tenantID, _, ok := Principal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		if tenantID != c.Params(param) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "reason": "other tenant"})
		}

		return c.Next()
	}
}

// Principal returns the tenant and user stored by the authentication layer.
func Principal(c fiber.Ctx) (tenantID, userID string, ok bool) {
	tenantID, _ = c.Locals(LocalTenantID).(string)
	userID, _ = c.Locals(LocalUserID).(string)

	return tenantID, userID, tenantID != "" && userID != ""
}

// SetPrincipal stores the principal for the following handlers.
func SetPrincipal(c fiber.Ctx, tenantID, userID string) {
	c.Locals(LocalTenantID, tenantID)
	c.Locals(LocalUserID, userID)
}

type checkFunc func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error)

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(engine *authz.Engine, permission string) fiber.Handler {
	return require("permission", permission, func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error) {
		return engine.HasPermission(c.Context(), tenantID, userID, permission)
	})
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(engine *authz.Engine, permissions ...string) fiber.Handler {
	return require("permissions", permissions, func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error) {
		return engine.HasAnyPermission(c.Context(), tenantID, userID, permissions...)
	})
}

// RequireAllPermissions creates Fiber middleware that requires all the given permissions.
func RequireAllPermissions(engine *authz.Engine, permissions ...string) fiber.Handler {
	return require("permissions", permissions, func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error) {
		return engine.HasAllPermissions(c.Context(), tenantID, userID, permissions...)
	})
}

// RequireFormAccess creates Fiber middleware that requires access to a form.
func RequireFormAccess(engine *authz.Engine, formName string) fiber.Handler {
	return require("form", formName, func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error) {
		return engine.Forms().HasFormAccess(c.Context(), tenantID, userID, formName)
	})
}

// RequireRouteAccess creates Fiber middleware that requires access to the form mapped
// to the request path and method.
func RequireRouteAccess(engine *authz.Engine) fiber.Handler {
	return func(c fiber.Ctx) error {
		route := c.Path()

		return require("route", route, func(c fiber.Ctx, tenantID, userID string) (authz.Decision, error) {
			return engine.Forms().HasRouteAccess(c.Context(), tenantID, userID, route, c.Method())
		})(c)
	}
}

// AddPermissionsToLocals is a Fiber middleware that adds the user's permissions to
// fiber.Locals. Requests without a principal pass unchanged.
func AddPermissionsToLocals(engine *authz.Engine) fiber.Handler {
	return func(c fiber.Ctx) error {
		tenantID, userID, ok := Principal(c)
		if !ok {
			return c.Next()
		}

		grants, err := engine.GetUserPermissions(c.Context(), tenantID, userID)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).
				Msg("failed to get user permissions")

			return c.Next()
		}

		c.Locals(LocalPermissions, grants.Codes())
		c.Locals(LocalHasPermission, grants.Has)

		return c.Next()
	}
}

func require(field string, target any, check checkFunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		tenantID, userID, ok := Principal(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		d, err := check(c, tenantID, userID)
		if err != nil {
			status := StatusOf(err)
			if status == fiber.StatusInternalServerError {
				log.Error().Err(err).Str("tenant_id", tenantID).Str("user_id", userID).Interface(field, target).
					Msg("failed to check permission")

				return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
			}

			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		if !d.Allowed {
			log.Warn().Str("tenant_id", tenantID).Str("user_id", userID).Interface(field, target).
				Str("reason", d.Reason).Msg("user lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "reason": d.Reason})
		}

		return c.Next()
	}
}

// StatusOf maps an engine error to an HTTP status code.
func StatusOf(err error) int {
	switch authz.KindOf(err) {
	case authz.KindNone:
		return fiber.StatusOK
	case authz.KindNotFound:
		return fiber.StatusNotFound
	case authz.KindConflict:
		return fiber.StatusConflict
	case authz.KindBadRequest:
		return fiber.StatusBadRequest
	case authz.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
