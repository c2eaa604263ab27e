package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of a sync cycle
var (
	ErrCorruptState     = errors.New("corrupt fingerprint state")
	ErrMalformedCatalog = errors.New("malformed catalog")
	ErrEditConflict     = errors.New("edit conflict")
	ErrCommitIO         = errors.New("commit failed")
)

// CorruptStateError means the persisted fingerprint state could not be read
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt fingerprint state %s: %v", e.Path, e.Err)
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// MalformedCatalogError means the catalog lacks its required structure
type MalformedCatalogError struct {
	Reason string
}

func (e *MalformedCatalogError) Error() string {
	return fmt.Sprintf("malformed catalog: %s", e.Reason)
}

func (e *MalformedCatalogError) Is(target error) bool {
	return target == ErrMalformedCatalog
}

// EditConflictError describes one edit that could not be planned or applied
type EditConflictError struct {
	Key    string
	Edit   string
	Reason string
}

func (e *EditConflictError) Error() string {
	if e.Edit == "" {
		return fmt.Sprintf("conflict on %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("conflict on %s (%s): %s", e.Key, e.Edit, e.Reason)
}

func (e *EditConflictError) Is(target error) bool {
	return target == ErrEditConflict
}

// CommitIOError means the backup or the write of the catalog failed
type CommitIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *CommitIOError) Error() string {
	return fmt.Sprintf("commit %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CommitIOError) Is(target error) bool {
	return target == ErrCommitIO
}

func (e *CommitIOError) Unwrap() error {
	return e.Err
}
