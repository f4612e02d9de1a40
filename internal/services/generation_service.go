package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// GenerationResult carries the run alongside any cards that were saved.
// Run is set whenever a run row was created, even if the call failed.
type GenerationResult struct {
	Run   *models.GenerationRun
	Cards []models.Card
}

type GenerationService struct {
	db        *gorm.DB
	generator Generator
	maxCards  int
}

func NewGenerationService(db *gorm.DB, generator Generator, maxCards int) *GenerationService {
	return &GenerationService{db: db, generator: generator, maxCards: maxCards}
}

func (s *GenerationService) Configured() bool {
	return s.generator != nil && s.generator.Configured()
}

// Generate asks the model for req.CardCount cards and stores them in the
// caller's deck. The model output is persisted on the run before the insert
// so SaveRun can retry a failed insert.
func (s *GenerationService) Generate(ctx context.Context, ownerID uuid.UUID, req *dto.GenerateRequest) (*GenerationResult, error) {
	if !s.Configured() {
		return nil, ErrGenerationNotConfigured
	}
	if err := req.Validate(s.maxCards); err != nil {
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

	db := s.db.WithContext(ctx)
	if _, err := assertDeckOwnership(db, deckID, ownerID); err != nil {
		return nil, err
	}

	run := &models.GenerationRun{
		ID:         uuid.New(),
		DeckID:     deckID,
		UserID:     ownerID,
		Topic:      strings.TrimSpace(req.Topic),
		Difficulty: difficulty,
		CardCount:  req.CardCount,
		Status:     models.GenerationPending,
	}
	if err := db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record generation run: %w", err)
	}
	result := &GenerationResult{Run: run}

	timer := metrics.GenerationTimer()
	prompt := BuildPrompt(run.Topic, strings.TrimSpace(req.Content), string(difficulty), req.CardCount)
	out, err := s.generator.Generate(ctx, prompt)
	timer()
	if err == nil {
		var cards []models.Card
		cards, err = toCards(out, deckID, req.CardCount)
		if err == nil {
			err = s.markGenerated(db, run, cards)
		}
	}
	if err != nil {
		s.markFailed(db, run, err)
		metrics.ObserveGeneration(metrics.OutcomeFailed, 0)
		return result, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	cards, err := s.save(db, run, ownerID)
	if err != nil {
		metrics.ObserveGeneration(metrics.OutcomeSaveFailed, 0)
		return result, err
	}
	metrics.ObserveGeneration(metrics.OutcomeSaved, len(cards))
	result.Cards = cards
	return result, nil
}

// SaveRun retries the insert of a generated run owned by ownerID.
func (s *GenerationService) SaveRun(ctx context.Context, runID, ownerID uuid.UUID) (*GenerationResult, error) {
	db := s.db.WithContext(ctx)

	var run models.GenerationRun
	if err := db.Where("id = ? AND user_id = ?", runID, ownerID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load generation run: %w", err)
	}
	result := &GenerationResult{Run: &run}

	switch run.Status {
	case models.GenerationSaved:
		return result, ErrRunAlreadySaved
	case models.GenerationGenerated:
	default:
		return result, ErrRunNotSavable
	}

	cards, err := s.save(db, &run, ownerID)
	if err != nil {
		metrics.ObserveGeneration(metrics.OutcomeSaveFailed, 0)
		return result, err
	}
	metrics.ObserveGeneration(metrics.OutcomeSaved, len(cards))
	result.Cards = cards
	return result, nil
}

func (s *GenerationService) markGenerated(db *gorm.DB, run *models.GenerationRun, cards []models.Card) error {
	raw, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to encode generated cards: %w", err)
	}
	run.Output = datatypes.JSON(raw)
	run.Status = models.GenerationGenerated
	if err := db.Model(run).Select("output", "status").Updates(run).Error; err != nil {
		return fmt.Errorf("failed to store generated cards: %w", err)
	}
	return nil
}

func (s *GenerationService) markFailed(db *gorm.DB, run *models.GenerationRun, cause error) {
	run.Status = models.GenerationFailed
	run.Error = cause.Error()
	if err := db.Model(run).Select("status", "error").Updates(run).Error; err != nil {
		slog.Error("failed to mark generation run failed", "run_id", run.ID, "error", err)
	}
}

// save inserts the stored output of run into its deck and marks it saved,
// in one transaction. Ownership is checked again because the deck may have
// changed hands or been deleted since generation.
func (s *GenerationService) save(db *gorm.DB, run *models.GenerationRun, ownerID uuid.UUID) ([]models.Card, error) {
	var stored []models.Card
	if err := json.Unmarshal(run.Output, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode stored output: %w", err)
	}

	cards := make([]models.Card, len(stored))
	for i, c := range stored {
		cards[i] = models.Card{
			ID:           uuid.New(),
			DeckID:       run.DeckID,
			FrontContent: c.FrontContent,
			BackContent:  c.BackContent,
			Difficulty:   c.Difficulty,
			Tags:         c.Tags,
		}
		cards[i].NormalizeTags()
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := assertDeckOwnership(tx, run.DeckID, ownerID); err != nil {
			return err
		}
		if err := tx.CreateInBatches(&cards, 100).Error; err != nil {
			return fmt.Errorf("failed to save generated cards: %w", err)
		}
		result := tx.Model(&models.GenerationRun{}).
			Where("id = ? AND status = ?", run.ID, models.GenerationGenerated).
			Update("status", models.GenerationSaved)
		if result.Error != nil {
			return fmt.Errorf("failed to mark generation run saved: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrRunAlreadySaved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	run.Status = models.GenerationSaved
	return cards, nil
}

// toCards validates model output. Surplus cards are dropped; a short or
// malformed answer is rejected as a whole.
func toCards(out *GeneratedDeck, deckID uuid.UUID, want int) ([]models.Card, error) {
	if out == nil || len(out.Cards) < want {
		got := 0
		if out != nil {
			got = len(out.Cards)
		}
		return nil, fmt.Errorf("model returned %d cards, want %d", got, want)
	}

	cards := make([]models.Card, 0, want)
	for i, gc := range out.Cards[:want] {
		front := strings.TrimSpace(gc.Front)
		back := strings.TrimSpace(gc.Back)
		difficulty := models.Difficulty(strings.ToLower(strings.TrimSpace(gc.Difficulty)))
		if front == "" || back == "" {
			return nil, fmt.Errorf("card %d has empty content", i)
		}
		if !difficulty.Valid() {
			return nil, fmt.Errorf("card %d has invalid difficulty %q", i, gc.Difficulty)
		}
		card := models.Card{
			DeckID:       deckID,
			FrontContent: front,
			BackContent:  back,
			Difficulty:   difficulty,
			Tags:         gc.Tags,
		}
		card.NormalizeTags()
		cards = append(cards, card)
	}
	return cards, nil
}
