package dto

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// CreateCardRequest is the body of POST /cards.
type CreateCardRequest struct {
	DeckID       string            `json:"deckId"`
	FrontContent string            `json:"frontContent"`
	BackContent  string            `json:"backContent"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Tags         []string          `json:"tags"`
}

func (r CreateCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DeckID, validation.Required, isUUID),
		validation.Field(&r.FrontContent, validation.Required, notBlank),
		validation.Field(&r.BackContent, validation.Required, notBlank),
		validation.Field(&r.Difficulty, validDifficulty),
	)
}

// GenerateRequest is the body of POST /flashcards/generate.
type GenerateRequest struct {
	Topic      string            `json:"topic"`
	Content    string            `json:"content"`
	Difficulty models.Difficulty `json:"difficulty"`
	CardCount  int               `json:"cardCount"`
	DeckID     string            `json:"deckId"`
}

// Validate checks the request against the configured card ceiling.
func (r GenerateRequest) Validate(maxCards int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Topic, validation.Required, notBlank, validation.Length(1, 500)),
		validation.Field(&r.CardCount, validation.Required, validation.Min(1), validation.Max(maxCards)),
		validation.Field(&r.DeckID, validation.Required, isUUID),
		validation.Field(&r.Difficulty, validDifficulty),
	)
}

// GenerateResponse is returned by generation and save-retry.
type GenerateResponse struct {
	Success bool          `json:"success"`
	Cards   []models.Card `json:"cards"`
	Count   int           `json:"count"`
}
