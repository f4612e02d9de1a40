package models

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Card belongs to exactly one deck and is owned through it.
type Card struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DeckID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"deck_id"`
	Deck         *Deck      `gorm:"foreignKey:DeckID" json:"-"`
	FrontContent string     `gorm:"type:text;not null" json:"front_content"`
	BackContent  string     `gorm:"type:text;not null" json:"back_content"`
	Difficulty   Difficulty `gorm:"size:10;not null;default:medium" json:"difficulty"`
	Tags         []string   `gorm:"type:jsonb;serializer:json" json:"tags"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *Card) NormalizeTags() {
	if c.Tags == nil {
		c.Tags = []string{}
	}
}
