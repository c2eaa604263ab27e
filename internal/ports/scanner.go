package ports

import (
	"context"

	"doccat/internal/domain"
)

// Scanner enumerates candidate documents on disk
type Scanner interface {
	// Scan returns every candidate sorted by catalog path
	Scan(ctx context.Context) ([]domain.CandidateFile, error)
}
