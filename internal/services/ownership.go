package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// OwnedBy scopes a decks query to ownerID.
func OwnedBy(ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("decks.user_id = ?", ownerID)
	}
}

// PublicDecks scopes a decks query to public decks.
func PublicDecks(db *gorm.DB) *gorm.DB {
	return db.Where("decks.is_public = ?", true)
}

// CardOwnedBy scopes a cards query to cards whose deck belongs to ownerID.
func CardOwnedBy(ownerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN decks ON decks.id = cards.deck_id").
			Where("decks.user_id = ?", ownerID)
	}
}

// assertDeckOwnership returns ErrDeckNotFound unless deckID exists and is
// owned by ownerID. A foreign deck and a missing deck look the same.
func assertDeckOwnership(tx *gorm.DB, deckID, ownerID uuid.UUID) (*models.Deck, error) {
	var deck models.Deck
	err := tx.Scopes(OwnedBy(ownerID)).Where("decks.id = ?", deckID).First(&deck).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to load deck: %w", err)
	}
	deck.NormalizeTags()
	return &deck, nil
}

// ParseID parses a path or body identifier.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
