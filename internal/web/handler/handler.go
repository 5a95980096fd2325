// Package handler holds what the decision API handlers share.
package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/GenziCode/genzi-rms-sub003/internal/authz"
	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	authzmw "github.com/GenziCode/genzi-rms-sub003/internal/web/middleware/authz"
)

const (
	// APIPath is the root of the decision API.
	APIPath = "/api/v1"

	// RouterRootPath is the root path inside a route group.
	RouterRootPath = "/"

	// ErrNilACEMsg is used if app, cfg or engine is nil.
	ErrNilACEMsg = "app, cfg or engine is nil"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, engine *authz.Engine) error
}

// Decision is the response of every check endpoint.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// NewDecision converts an engine decision.
func NewDecision(d authz.Decision) Decision {
	return Decision{Allowed: d.Allowed, Reason: d.Reason}
}

// Error writes err with the status of its kind. Internal errors are logged and hidden.
func Error(c fiber.Ctx, err error) error {
	status := authzmw.StatusOf(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
