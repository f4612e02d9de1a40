package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/testutil"
)

func generateRequest(deck *models.Deck, n int) *dto.GenerateRequest {
	return &dto.GenerateRequest{
		Topic:      "Photosynthesis",
		Difficulty: models.DifficultyEasy,
		CardCount:  n,
		DeckID:     deck.ID.String(),
	}
}

func TestGenerateInsertsExactlyN(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	gen := &testutil.StubGenerator{Output: testutil.Cards(7, "easy")}
	svc := services.NewGenerationService(db, gen, 50)

	result, err := svc.Generate(context.Background(), deck.UserID, generateRequest(deck, 5))
	require.NoError(t, err)
	require.Len(t, result.Cards, 5)
	assert.Equal(t, models.GenerationSaved, result.Run.Status)

	var stored []models.Card
	require.NoError(t, db.Where("deck_id = ?", deck.ID).Find(&stored).Error)
	assert.Len(t, stored, 5)
	for _, c := range stored {
		assert.Equal(t, deck.ID, c.DeckID)
		assert.Equal(t, models.DifficultyEasy, c.Difficulty)
		assert.Equal(t, []string{"generated"}, c.Tags)
	}

	assert.Equal(t, 1, gen.Calls())
	assert.Contains(t, gen.LastPrompt(), `Generate 5 flashcards about "Photosynthesis"`)
	assert.Contains(t, gen.LastPrompt(), "appropriate for easy difficulty level")
}

func TestGenerateShortOutputFailsRun(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	gen := &testutil.StubGenerator{Output: testutil.Cards(2, "medium")}
	svc := services.NewGenerationService(db, gen, 50)

	result, err := svc.Generate(context.Background(), deck.UserID, generateRequest(deck, 3))
	require.ErrorIs(t, err, services.ErrGeneration)
	require.NotNil(t, result)

	var run models.GenerationRun
	require.NoError(t, db.First(&run, "id = ?", result.Run.ID).Error)
	assert.Equal(t, models.GenerationFailed, run.Status)
	assert.NotEmpty(t, run.Error)

	var count int64
	require.NoError(t, db.Model(&models.Card{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateRejectsMalformedCards(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	out := testutil.Cards(2, "medium")
	out.Cards[1].Difficulty = "impossible"
	svc := services.NewGenerationService(db, &testutil.StubGenerator{Output: out}, 50)

	_, err := svc.Generate(context.Background(), deck.UserID, generateRequest(deck, 2))
	require.ErrorIs(t, err, services.ErrGeneration)

	var count int64
	require.NoError(t, db.Model(&models.Card{}).Count(&count).Error)
	assert.Zero(t, count, "no partial acceptance")
}

func TestGenerateProviderError(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	gen := &testutil.StubGenerator{Err: errors.New("upstream 503")}
	svc := services.NewGenerationService(db, gen, 50)

	_, err := svc.Generate(context.Background(), deck.UserID, generateRequest(deck, 2))
	assert.ErrorIs(t, err, services.ErrGeneration)
}

func TestGeneratePreconditions(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		gen := &testutil.StubGenerator{Unconfigured: true}
		svc := services.NewGenerationService(db, gen, 50)
		_, err := svc.Generate(ctx, deck.UserID, generateRequest(deck, 2))
		assert.ErrorIs(t, err, services.ErrGenerationNotConfigured)
		assert.Zero(t, gen.Calls())
	})

	t.Run("validation", func(t *testing.T) {
		gen := &testutil.StubGenerator{Output: testutil.Cards(2, "easy")}
		svc := services.NewGenerationService(db, gen, 10)
		for _, req := range []*dto.GenerateRequest{
			{CardCount: 2, DeckID: deck.ID.String()},
			{Topic: "x", DeckID: deck.ID.String()},
			{Topic: "x", CardCount: 11, DeckID: deck.ID.String()},
			{Topic: "x", CardCount: 2},
			{Topic: "x", CardCount: 2, DeckID: deck.ID.String(), Difficulty: "expert"},
		} {
			_, err := svc.Generate(ctx, deck.UserID, req)
			var verr *services.ValidationError
			assert.ErrorAs(t, err, &verr)
		}
		assert.Zero(t, gen.Calls())
	})

	t.Run("foreign deck", func(t *testing.T) {
		gen := &testutil.StubGenerator{Output: testutil.Cards(2, "easy")}
		svc := services.NewGenerationService(db, gen, 50)
		_, err := svc.Generate(ctx, uuid.New(), generateRequest(deck, 2))
		assert.ErrorIs(t, err, services.ErrDeckNotFound)
		assert.Zero(t, gen.Calls())
	})
}

func TestSaveRunRetriesFailedInsert(t *testing.T) {
	db := testutil.NewDB(t)
	deck := newDeck(t, services.NewDeckService(db), uuid.New())
	gen := &testutil.StubGenerator{Output: testutil.Cards(3, "hard")}
	svc := services.NewGenerationService(db, gen, 50)
	ctx := context.Background()

	failing := true
	testutil.FailInserts(t, db, "cards", &failing)

	result, err := svc.Generate(ctx, deck.UserID, generateRequest(deck, 3))
	require.Error(t, err)
	require.NotErrorIs(t, err, services.ErrGeneration)
	require.NotNil(t, result.Run)
	assert.Equal(t, models.GenerationGenerated, result.Run.Status)

	var count int64
	require.NoError(t, db.Model(&models.Card{}).Count(&count).Error)
	require.Zero(t, count)

	_, err = svc.SaveRun(ctx, result.Run.ID, uuid.New())
	assert.ErrorIs(t, err, services.ErrRunNotFound)

	failing = false
	saved, err := svc.SaveRun(ctx, result.Run.ID, deck.UserID)
	require.NoError(t, err)
	assert.Len(t, saved.Cards, 3)
	assert.Equal(t, 1, gen.Calls(), "retry must not call the provider")

	require.NoError(t, db.Model(&models.Card{}).Where("deck_id = ?", deck.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	_, err = svc.SaveRun(ctx, result.Run.ID, deck.UserID)
	assert.ErrorIs(t, err, services.ErrRunAlreadySaved)
}
