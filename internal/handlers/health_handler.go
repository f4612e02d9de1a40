package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
)

type HealthHandler struct {
	db                   *gorm.DB
	generationConfigured bool
}

func NewHealthHandler(db *gorm.DB, generationConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, generationConfigured: generationConfigured}
}

// Check reports store reachability and whether generation is available.
// It never exposes credentials.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy"
	}

	return c.JSON(dto.HealthResponse{
		Status:               "ok",
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
		DB:                   dbStatus,
		GenerationConfigured: h.generationConfigured,
	})
}
