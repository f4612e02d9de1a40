package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

type DeckService struct {
	db *gorm.DB
}

func NewDeckService(db *gorm.DB) *DeckService {
	return &DeckService{db: db}
}

// ListDecks returns the caller's decks, most recently updated first.
func (s *DeckService) ListDecks(ctx context.Context, ownerID uuid.UUID) ([]dto.DeckSummary, error) {
	return s.listDecks(ctx, OwnedBy(ownerID))
}

// ListPublicDecks returns every public deck regardless of owner.
func (s *DeckService) ListPublicDecks(ctx context.Context) ([]dto.DeckSummary, error) {
	return s.listDecks(ctx, PublicDecks)
}

func (s *DeckService) listDecks(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]dto.DeckSummary, error) {
	db := s.db.WithContext(ctx)
	counts := db.Model(&models.Card{}).
		Select("deck_id, COUNT(*) AS card_count").
		Group("deck_id")

	decks := make([]dto.DeckSummary, 0)
	err := db.Model(&models.Deck{}).
		Select("decks.*, COALESCE(cc.card_count, 0) AS card_count").
		Joins("LEFT JOIN (?) AS cc ON cc.deck_id = decks.id", counts).
		Scopes(scope).
		Order("decks.updated_at DESC").
		Order("decks.id").
		Find(&decks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	for i := range decks {
		decks[i].NormalizeTags()
	}
	return decks, nil
}

// GetDeck returns an owned deck with its cards in creation order.
func (s *DeckService) GetDeck(ctx context.Context, deckID, ownerID uuid.UUID) (*dto.DeckDetail, error) {
	db := s.db.WithContext(ctx)
	deck, err := assertDeckOwnership(db, deckID, ownerID)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0)
	if err := db.Where("deck_id = ?", deck.ID).Order("created_at ASC").Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	for i := range cards {
		cards[i].NormalizeTags()
	}

	return &dto.DeckDetail{
		Deck:      *deck,
		Cards:     cards,
		CardCount: int64(len(cards)),
	}, nil
}

func (s *DeckService) CreateDeck(ctx context.Context, ownerID uuid.UUID, req *dto.DeckRequest) (*models.Deck, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	deck := models.Deck{
		ID:     uuid.New(),
		UserID: ownerID,
	}
	applyDeckRequest(&deck, req)

	if err := s.db.WithContext(ctx).Create(&deck).Error; err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return &deck, nil
}

// UpdateDeck replaces the mutable fields of an owned deck. The owner never
// changes.
func (s *DeckService) UpdateDeck(ctx context.Context, deckID, ownerID uuid.UUID, req *dto.DeckRequest) (*models.Deck, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}

	var updated *models.Deck
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deck, err := assertDeckOwnership(tx, deckID, ownerID)
		if err != nil {
			return err
		}
		applyDeckRequest(deck, req)

		result := tx.Model(deck).
			Scopes(OwnedBy(ownerID)).
			Select("title", "description", "tags", "is_public").
			Updates(deck)
		if result.Error != nil {
			return fmt.Errorf("failed to update deck: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrDeckNotFound
		}
		updated = deck
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteDeck removes an owned deck together with its cards and generation
// runs. Either everything goes or nothing does.
func (s *DeckService) DeleteDeck(ctx context.Context, deckID, ownerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := assertDeckOwnership(tx, deckID, ownerID); err != nil {
			return err
		}
		if err := tx.Where("deck_id = ?", deckID).Delete(&models.Card{}).Error; err != nil {
			return fmt.Errorf("failed to delete deck cards: %w", err)
		}
		if err := tx.Where("deck_id = ?", deckID).Delete(&models.GenerationRun{}).Error; err != nil {
			return fmt.Errorf("failed to delete generation runs: %w", err)
		}
		result := tx.Scopes(OwnedBy(ownerID)).Where("decks.id = ?", deckID).Delete(&models.Deck{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete deck: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrDeckNotFound
		}
		return nil
	})
}

func applyDeckRequest(deck *models.Deck, req *dto.DeckRequest) {
	deck.Title = strings.TrimSpace(req.Title)
	deck.Description = req.Description
	deck.Tags = req.Tags
	deck.NormalizeTags()
	deck.IsPublic = req.IsPublic != nil && *req.IsPublic
}
