package ports

import (
	"context"

	"doccat/internal/domain"
)

// FingerprintStore persists the fingerprints of processed files
type FingerprintStore interface {
	// Location describes where the state lives (file path or DSN)
	Location() string

	// Load returns every record. A missing store is empty; an unreadable one
	// yields *domain.CorruptStateError.
	Load(ctx context.Context) (domain.Fingerprints, error)

	// Save atomically replaces the persisted state
	Save(ctx context.Context, records domain.Fingerprints) error

	// Close releases resources held by the store
	Close() error
}
