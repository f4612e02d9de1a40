// Package app assembles the HTTP server and runs it with its background
// workers.
package app

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

// Deps are the long-lived collaborators shared by every request.
type Deps struct {
	DB        *gorm.DB
	Identity  identity.Provider
	Generator services.Generator
}

// NewServer builds the Fiber app with middleware and routes.
func NewServer(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "flashdeck",
		BodyLimit:             1 * 1024 * 1024,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(requestid.New())
	if cfg.AppEnv != "test" {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	deckService := services.NewDeckService(deps.DB)
	cardService := services.NewCardService(deps.DB)
	generationService := services.NewGenerationService(deps.DB, deps.Generator, cfg.MaxGeneratedCards)

	routes.Setup(app, cfg, middleware.Credentials(cfg, deps.Identity), routes.Handlers{
		Health:     handlers.NewHealthHandler(deps.DB, generationService.Configured()),
		Deck:       handlers.NewDeckHandler(deckService),
		Card:       handlers.NewCardHandler(cardService),
		Generation: handlers.NewGenerationHandler(generationService),
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only 4xx details reach the client
	if code >= fiber.StatusInternalServerError {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"trace_id", c.Locals("requestid"),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
