package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationStatus string

const (
	GenerationPending   GenerationStatus = "pending"
	GenerationGenerated GenerationStatus = "generated"
	GenerationSaved     GenerationStatus = "saved"
	GenerationFailed    GenerationStatus = "failed"
)

// GenerationRun records one AI generation request. Output holds the
// validated cards so a failed insert can be retried without calling the
// provider again.
type GenerationRun struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	DeckID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"deck_id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Topic      string           `gorm:"size:500;not null" json:"topic"`
	Difficulty Difficulty       `gorm:"size:10;not null" json:"difficulty"`
	CardCount  int              `gorm:"not null" json:"card_count"`
	Status     GenerationStatus `gorm:"size:20;not null;index" json:"status"`
	Output     datatypes.JSON   `json:"-"`
	Error      string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
