package dto

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/flashdeck-backend/internal/models"
)

// notBlank rejects strings that are empty after trimming. Required alone
// would accept "   ".
var notBlank = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

var isUUID = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return errors.New("must be a valid UUID")
	}
	return nil
})

var validDifficulty = validation.In(
	models.DifficultyEasy,
	models.DifficultyMedium,
	models.DifficultyHard,
).Error("must be one of easy, medium, hard")
