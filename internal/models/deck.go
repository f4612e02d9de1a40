package models

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a named, owned collection of cards.
type Deck struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Tags        []string  `gorm:"type:jsonb;serializer:json" json:"tags"`
	IsPublic    bool      `gorm:"not null;default:false;index" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
}

// NormalizeTags replaces a nil tag list with an empty one so responses
// always carry an array.
func (d *Deck) NormalizeTags() {
	if d.Tags == nil {
		d.Tags = []string{}
	}
}
