package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDeckNotFound = fmt.Errorf("deck %w", ErrNotFound)
	ErrCardNotFound = fmt.Errorf("card %w", ErrNotFound)
	ErrRunNotFound  = fmt.Errorf("generation run %w", ErrNotFound)

	ErrInvalidID = errors.New("invalid id")

	ErrGeneration              = errors.New("failed to generate flashcards")
	ErrGenerationNotConfigured = errors.New("generation provider not configured")
	ErrRunAlreadySaved         = errors.New("generation run already saved")
	ErrRunNotSavable           = errors.New("generation run has no output to save")
)

// ValidationError marks caller input that failed validation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Err: err}
}
