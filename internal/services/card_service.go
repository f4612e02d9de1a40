package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

type CardService struct {
	db *gorm.DB
}

func NewCardService(db *gorm.DB) *CardService {
	return &CardService{db: db}
}

// ListCards returns the cards of an owned deck in creation order.
func (s *CardService) ListCards(ctx context.Context, deckID, ownerID uuid.UUID) ([]models.Card, error) {
	db := s.db.WithContext(ctx)
	if _, err := assertDeckOwnership(db, deckID, ownerID); err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0)
	if err := db.Where("deck_id = ?", deckID).Order("created_at ASC").Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	for i := range cards {
		cards[i].NormalizeTags()
	}
	return cards, nil
}

func (s *CardService) CreateCard(ctx context.Context, ownerID uuid.UUID, req *dto.CreateCardRequest) (*models.Card, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	deckID, err := uuid.Parse(req.DeckID)
	if err != nil {
		return nil, invalid(ErrInvalidID)
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	card := models.Card{
		ID:           uuid.New(),
		DeckID:       deckID,
		FrontContent: strings.TrimSpace(req.FrontContent),
		BackContent:  strings.TrimSpace(req.BackContent),
		Difficulty:   difficulty,
		Tags:         req.Tags,
	}
	card.NormalizeTags()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := assertDeckOwnership(tx, deckID, ownerID); err != nil {
			return err
		}
		if err := tx.Create(&card).Error; err != nil {
			return fmt.Errorf("failed to create card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCard removes a card whose parent deck belongs to ownerID.
func (s *CardService) DeleteCard(ctx context.Context, cardID, ownerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card models.Card
		err := tx.Model(&models.Card{}).
			Select("cards.*").
			Scopes(CardOwnedBy(ownerID)).
			Where("cards.id = ?", cardID).
			First(&card).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to load card: %w", err)
		}
		if err := tx.Where("id = ?", card.ID).Delete(&models.Card{}).Error; err != nil {
			return fmt.Errorf("failed to delete card: %w", err)
		}
		return nil
	})
}
