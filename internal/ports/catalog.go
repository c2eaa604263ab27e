package ports

import "context"

// CatalogStore reads and commits the catalog file
type CatalogStore interface {
	// Path returns the location of the catalog
	Path() string

	// Exists reports whether the catalog file is present
	Exists() bool

	// Read returns the full catalog buffer
	Read(ctx context.Context) (string, error)

	// Commit backs up the current catalog and replaces it with buf.
	// It returns the backup path. A failed backup leaves the catalog untouched.
	Commit(ctx context.Context, buf string) (string, error)

	// Create writes a new catalog and fails if one already exists
	Create(ctx context.Context, buf string) error
}
