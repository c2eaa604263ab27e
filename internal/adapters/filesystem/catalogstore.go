package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"doccat/internal/domain"
	"doccat/internal/ports"
)

const backupTimeFormat = "20060102150405"

// CatalogStore implements ports.CatalogStore for a catalog file on disk
type CatalogStore struct {
	path string
	now  func() time.Time
}

// Ensure CatalogStore implements ports.CatalogStore
var _ ports.CatalogStore = (*CatalogStore)(nil)

// NewCatalogStore creates a store for the catalog at path
func NewCatalogStore(path string) *CatalogStore {
	return &CatalogStore{path: absPath(path), now: time.Now}
}

// Path returns the catalog location
func (s *CatalogStore) Path() string {
	return s.path
}

// Exists reports whether the catalog file is present
func (s *CatalogStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Read returns the catalog buffer
func (s *CatalogStore) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to read catalog: %w", err)
	}
	return string(data), nil
}

// Commit copies the current catalog to a timestamped backup, then replaces
// it with buf
func (s *CatalogStore) Commit(ctx context.Context, buf string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return "", &domain.CommitIOError{Op: "stat", Path: s.path, Err: err}
	}

	backup := s.backupPath()
	if err := copyFile(s.path, backup, info.Mode().Perm()); err != nil {
		return "", &domain.CommitIOError{Op: "backup", Path: backup, Err: err}
	}

	if err := WriteAtomic(s.path, []byte(buf), info.Mode().Perm()); err != nil {
		return backup, &domain.CommitIOError{Op: "write", Path: s.path, Err: err}
	}
	return backup, nil
}

// Create writes a brand new catalog
func (s *CatalogStore) Create(_ context.Context, buf string) error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("catalog already exists: %s: %w", s.path, fs.ErrExist)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	if err := WriteAtomic(s.path, []byte(buf), 0644); err != nil {
		return &domain.CommitIOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// backupPath returns "<name>.bak.<UTC timestamp>", numbered on collision
func (s *CatalogStore) backupPath() string {
	base := s.path + ".bak." + s.now().UTC().Format(backupTimeFormat)
	candidate := base
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
