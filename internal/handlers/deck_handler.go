package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
)

type DeckHandler struct {
	deckService *services.DeckService
}

func NewDeckHandler(deckService *services.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

// List serves GET /decks. With ?public=true it lists every public deck and
// does not need a caller; public listing is open to anonymous requests on
// purpose, while the owned listing below requires one.
func (h *DeckHandler) List(c *fiber.Ctx) error {
	if c.Query("public") == "true" {
		decks, err := h.deckService.ListPublicDecks(c.UserContext())
		if err != nil {
			return fail(c, "list_public_decks", "Failed to fetch decks", err)
		}
		return c.JSON(fiber.Map{"decks": decks})
	}

	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "list_decks", "", err)
	}
	decks, err := h.deckService.ListDecks(c.UserContext(), caller.ID)
	if err != nil {
		return fail(c, "list_decks", "Failed to fetch decks", err)
	}
	return c.JSON(fiber.Map{"decks": decks})
}

func (h *DeckHandler) Create(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "create_deck", "", err)
	}

	var req dto.DeckRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	deck, err := h.deckService.CreateDeck(c.UserContext(), caller.ID, &req)
	if err != nil {
		return fail(c, "create_deck", "Failed to create deck", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"deck": deck})
}

func (h *DeckHandler) Get(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "get_deck", "", err)
	}
	deckID, err := services.ParseID(c.Params("id"))
	if err != nil {
		return fail(c, "get_deck", "", services.ErrDeckNotFound)
	}

	deck, err := h.deckService.GetDeck(c.UserContext(), deckID, caller.ID)
	if err != nil {
		return fail(c, "get_deck", "Failed to fetch deck", err)
	}
	return c.JSON(fiber.Map{"deck": deck, "card_count": deck.CardCount})
}

func (h *DeckHandler) Update(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "update_deck", "", err)
	}
	deckID, err := services.ParseID(c.Params("id"))
	if err != nil {
		return fail(c, "update_deck", "", services.ErrDeckNotFound)
	}

	var req dto.DeckRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	deck, err := h.deckService.UpdateDeck(c.UserContext(), deckID, caller.ID, &req)
	if err != nil {
		return fail(c, "update_deck", "Failed to update deck", err)
	}
	return c.JSON(fiber.Map{"deck": deck})
}

func (h *DeckHandler) Delete(c *fiber.Ctx) error {
	caller, err := identity.Require(c)
	if err != nil {
		return fail(c, "delete_deck", "", err)
	}
	deckID, err := services.ParseID(c.Params("id"))
	if err != nil {
		return fail(c, "delete_deck", "", services.ErrDeckNotFound)
	}

	if err := h.deckService.DeleteDeck(c.UserContext(), deckID, caller.ID); err != nil {
		return fail(c, "delete_deck", "Failed to delete deck", err)
	}
	return c.JSON(fiber.Map{"success": true})
}
