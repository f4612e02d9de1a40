package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// DeckRequest is the body of POST /decks and PUT /decks/:id.
type DeckRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"isPublic"`
}

func (r DeckRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, notBlank, validation.Length(1, 255)),
		validation.Field(&r.Tags, validation.Each(validation.Length(1, 50))),
	)
}

// DeckSummary is a deck as listed, with its card count.
type DeckSummary struct {
	models.Deck
	CardCount int64 `json:"card_count"`
}

// DeckDetail is a single deck with its cards nested.
type DeckDetail struct {
	models.Deck
	Cards     []models.Card `json:"cards"`
	CardCount int64         `json:"card_count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status               string `json:"status"`
	Timestamp            string `json:"timestamp"`
	DB                   string `json:"db"`
	GenerationConfigured bool   `json:"generation_configured"`
}
