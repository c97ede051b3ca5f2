package media

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTitle is returned when an item is created without a title
	ErrInvalidTitle = errors.New("title cannot be empty")

	// ErrInvalidState is returned when a state name is not recognized
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidKind is returned when a snapshot names an unknown kind
	ErrInvalidKind = errors.New("invalid item kind")

	// ErrInvalidSeasonNumber is returned for negative season numbers
	ErrInvalidSeasonNumber = errors.New("season number cannot be negative")

	// ErrInvalidEpisodeNumber is returned for non-positive episode numbers
	ErrInvalidEpisodeNumber = errors.New("episode number must be positive")

	// ErrDuplicateSeason is returned when a show already owns a season number
	ErrDuplicateSeason = errors.New("season already exists")

	// ErrDuplicateEpisode is returned when a season already owns an episode number
	ErrDuplicateEpisode = errors.New("episode already exists")

	// ErrInvalidInfoHash is returned when a stream has no usable info hash
	ErrInvalidInfoHash = errors.New("invalid info hash")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
