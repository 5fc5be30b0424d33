package core

import (
	"fmt"
	"testing"
)

// TestIsValidationError tests validation error classification
func TestIsValidationError(t *testing.T) {
	if !IsValidationError(NewValidationError("age_range", "must be ordered")) {
		t.Error("NewValidationError results should classify as validation errors")
	}
	if !IsValidationError(fmt.Errorf("wrapped: %w", ErrUnknownPreset)) {
		t.Error("Wrapped sentinel should classify as validation error")
	}
	if IsValidationError(ErrNotFound) {
		t.Error("Not-found errors are not validation errors")
	}
}

// TestIsNotFoundError tests not-found error classification
func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(NewNotFoundError("study", "abc")) {
		t.Error("NewNotFoundError results should classify as not-found")
	}
	if IsNotFoundError(NewValidationError("count", "out of bounds")) {
		t.Error("Validation errors are not not-found errors")
	}
}
