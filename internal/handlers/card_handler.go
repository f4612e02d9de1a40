package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

type CardHandler struct {
	cardService *services.CardService
}

func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// List serves GET /cards?deckId=.
func (h *CardHandler) List(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "list_cards", "", err)
	}

	raw := c.Query("deckId")
	if raw == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Missing deckId parameter")
	}
	deckID, err := services.ParseID(raw)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid deckId parameter")
	}

	cards, err := h.cardService.ListCards(c.UserContext(), deckID, caller.ID)
	if err != nil {
		return fail(c, "list_cards", "Failed to fetch cards", err)
	}
	return c.JSON(fiber.Map{"cards": cards})
}

func (h *CardHandler) Create(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "create_card", "", err)
	}

	var req dto.CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	card, err := h.cardService.CreateCard(c.UserContext(), caller.ID, &req)
	if err != nil {
		return fail(c, "create_card", "Failed to create card", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"card": card})
}

func (h *CardHandler) Delete(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "delete_card", "", err)
	}
	cardID, err := services.ParseID(c.Params("id"))
	if err != nil {
		return fail(c, "delete_card", "", services.ErrCardNotFound)
	}

	if err := h.cardService.DeleteCard(c.UserContext(), cardID, caller.ID); err != nil {
		return fail(c, "delete_card", "Failed to delete card", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
