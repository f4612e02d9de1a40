package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

// HeaderGenerationID carries the run id so a failed save can be retried.
const HeaderGenerationID = "X-Generation-ID"

type GenerationHandler struct {
	generationService *services.GenerationService
}

func NewGenerationHandler(generationService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "generate_flashcards", "", err)
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.generationService.Generate(c.UserContext(), caller.ID, &req)
	setRunHeader(c, result)
	if err != nil {
		return fail(c, "generate_flashcards", generationFailure(result), err)
	}
	return c.JSON(generateResponse(result))
}

// SaveRun serves POST /flashcards/generations/:id/save.
func (h *GenerationHandler) SaveRun(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "save_generation", "", err)
	}
	runID, err := services.ParseID(c.Params("id"))
	if err != nil {
		return fail(c, "save_generation", "", services.ErrRunNotFound)
	}

	result, err := h.generationService.SaveRun(c.UserContext(), runID, caller.ID)
	setRunHeader(c, result)
	if err != nil {
		return fail(c, "save_generation", "Failed to save generated cards", err)
	}
	return c.JSON(generateResponse(result))
}

func setRunHeader(c *fiber.Ctx, result *services.GenerationResult) {
	if result != nil && result.Run != nil {
		c.Set(HeaderGenerationID, result.Run.ID.String())
	}
}

func generationFailure(result *services.GenerationResult) string {
	if result != nil && result.Run != nil && result.Run.Status == models.GenerationGenerated {
		return "Failed to save generated cards"
	}
	return "Failed to generate flashcards"
}

func generateResponse(result *services.GenerationResult) dto.GenerateResponse {
	return dto.GenerateResponse{
		Success: true,
		Cards:   result.Cards,
		Count:   len(result.Cards),
	}
}
