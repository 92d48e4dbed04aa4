package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrStudyNotFound   = fmt.Errorf("%w: study", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// Input errors
	ErrValidation      = errors.New("invalid SUS data")
	ErrInvalidArgument = errors.New("invalid argument")

	// Design errors
	ErrUnsupportedDesign  = errors.New("unsupported study design")
	ErrDesignIncomplete   = errors.New("study design decisions are not complete")
	ErrDecisionLocked     = errors.New("decision already made for this session")
	ErrUnequalSampleSizes = errors.New("dependent samples require equal respondent counts")
	ErrInsufficientActive = errors.New("at least two studies must be selected")
)

// Error constructors with context
func NewInvalidArgumentError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}

func NewStudyNotFoundError(index int) error {
	return fmt.Errorf("%w: index %d", ErrStudyNotFound, index)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsUnsupportedDesign(err error) bool {
	return errors.Is(err, ErrUnsupportedDesign)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsDesignError reports errors caused by the analyst's design choices rather
// than by the data.
func IsDesignError(err error) bool {
	return errors.Is(err, ErrDesignIncomplete) ||
		errors.Is(err, ErrDecisionLocked) ||
		errors.Is(err, ErrUnequalSampleSizes) ||
		errors.Is(err, ErrInsufficientActive)
}
