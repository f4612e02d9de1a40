package handlers

import (
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: message})
}

// fail maps err to a status and an {error} body. Anything unrecognised is
// a 500: the cause is logged and reported, and the client gets fallback.
func fail(c *fiber.Ctx, operation, fallback string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, identity.ErrAuthenticationRequired):
		return errorJSON(c, fiber.StatusUnauthorized, "Authentication required")
	case errors.Is(err, services.ErrDeckNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Deck not found")
	case errors.Is(err, services.ErrCardNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Card not found")
	case errors.Is(err, services.ErrRunNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Generation run not found")
	case errors.Is(err, services.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrRunAlreadySaved):
		return errorJSON(c, fiber.StatusConflict, "Generation run already saved")
	case errors.Is(err, services.ErrRunNotSavable):
		return errorJSON(c, fiber.StatusConflict, "Generation run has no output to save")
	case errors.Is(err, services.ErrGenerationNotConfigured):
		fallback = "Generation provider not configured"
	}

	report(c, operation, err)
	return errorJSON(c, fiber.StatusInternalServerError, fallback)
}

func report(c *fiber.Ctx, operation string, err error) {
	attrs := []any{
		"operation", operation,
		"method", c.Method(),
		"path", c.Path(),
		"trace_id", c.Locals("requestid"),
		"error", err.Error(),
	}
	caller := identity.FromCtx(c)
	if caller != nil {
		attrs = append(attrs, "user_id", caller.ID.String())
	}
	slog.Error("request failed", attrs...)

	hub := sentryfiber.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("route", c.Method()+" "+c.Route().Path)
		scope.SetTag("operation", operation)
		if caller != nil {
			scope.SetUser(sentry.User{ID: caller.ID.String(), Email: caller.Email})
		}
		hub.CaptureException(err)
	})
}

func badBody(c *fiber.Ctx) error {
	return errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
}
