package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound          = errors.New("resource not found")
	ErrStatementNotFound = fmt.Errorf("%w: statement", ErrNotFound)

	// ErrStoreUnavailable is fatal for the analysis call that hit it; nothing retries.
	ErrStoreUnavailable = errors.New("vote store unavailable")

	// ErrCalculationInProgress is returned by the single-flight manager.
	ErrCalculationInProgress = errors.New("calculation already in progress")

	ErrLabelMismatch = errors.New("label array and participant array differ in length")
	ErrInvalidVote   = errors.New("invalid vote value")
)

// NewNotFoundError creates a not-found error for a resource id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewStoreUnavailableError wraps the underlying cause of a store failure;
// both ErrStoreUnavailable and the cause match with errors.Is
func NewStoreUnavailableError(store string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrStoreUnavailable, store)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, store, cause)
}

// NewLabelMismatchError records both lengths
func NewLabelMismatchError(labels, participants int) error {
	return fmt.Errorf("%w: %d labels, %d participants", ErrLabelMismatch, labels, participants)
}

// IsNotFoundError checks for any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStoreUnavailable checks for store connectivity failures
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
