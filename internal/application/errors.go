package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrReentrantCycle   = errors.New("a synchronization cycle is already running")
	ErrCatalogMissing   = errors.New("catalog not found")
	ErrCatalogExists    = errors.New("catalog already exists")
	ErrNoProposer       = errors.New("entry proposer not available")
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RelocateError represents a relocation that cannot be planned or applied
type RelocateError struct {
	Key    string
	Dest   string
	Reason string
	Err    error
}

func (e *RelocateError) Error() string {
	return fmt.Sprintf("cannot relocate %s to %q: %s", e.Key, e.Dest, e.Reason)
}

func (e *RelocateError) Is(target error) bool {
	return target == ErrInvalidOperation
}

func (e *RelocateError) Unwrap() error {
	return e.Err
}
