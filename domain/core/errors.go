package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrStudyNotFound    = fmt.Errorf("%w: study", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrResponseNotFound = fmt.Errorf("%w: response", ErrNotFound)

	// Validation errors
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidPanelConfig = errors.New("invalid panel configuration")
	ErrUnknownPreset      = errors.New("unknown panel preset")
	ErrInvalidQuestion    = errors.New("invalid question definition")
	ErrInsufficientData   = errors.New("insufficient data for analysis")

	// Simulation errors
	ErrOracleUnavailable = errors.New("response oracle unavailable")
	ErrSimulationAborted = errors.New("simulation aborted")

	// Comparison errors
	ErrTooFewStudies = errors.New("comparison requires at least two completed studies")
)

// NewNotFoundError builds a not-found error with resource context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewValidationError builds a field-level validation error wrapping
// ErrValidationFailed, so callers can classify it with IsValidationError
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w for %s: %s", ErrValidationFailed, field, reason)
}

// IsNotFoundError checks if an error is a not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is one of the validation errors
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidPanelConfig) ||
		errors.Is(err, ErrUnknownPreset) ||
		errors.Is(err, ErrInvalidQuestion)
}
