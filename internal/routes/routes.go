package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/middleware"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Deck       *handlers.DeckHandler
	Card       *handlers.CardHandler
	Generation *handlers.GenerationHandler
}

// Setup mounts the API. credentials resolves the caller for every /api route
// after /health; it never rejects on its own.
func Setup(app *fiber.App, cfg *config.Config, credentials fiber.Handler, h Handlers) {
	app.Get("/metrics", metrics.Handler())

	// General API rate limit per IP
	api := app.Group("/api", middleware.RateLimit(cfg.RateLimitPerMinute))

	api.Get("/health", h.Health.Check)

	api.Use(credentials)

	decks := api.Group("/decks")
	decks.Get("/", h.Deck.List)
	decks.Post("/", h.Deck.Create)
	decks.Get("/:id", h.Deck.Get)
	decks.Put("/:id", h.Deck.Update)
	decks.Delete("/:id", h.Deck.Delete)

	cards := api.Group("/cards")
	cards.Get("/", h.Card.List)
	cards.Post("/", h.Card.Create)
	cards.Delete("/:id", h.Card.Delete)

	// Provider calls are expensive; stricter limit
	flashcards := api.Group("/flashcards", middleware.RateLimit(cfg.GenerateRateLimitPerMinute))
	flashcards.Post("/generate", h.Generation.Generate)
	flashcards.Post("/generations/:id/save", h.Generation.SaveRun)
}
