package statefile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

// FileName is the default sidecar name inside the document root
const FileName = ".doccat_state.json"

const formatVersion = 1

type document struct {
	Version        int                                 `json:"version"`
	ProcessedFiles map[string]domain.FingerprintRecord `json:"processed_files"`
}

// Store implements ports.FingerprintStore as a JSON sidecar file
type Store struct {
	path string
}

// Ensure Store implements ports.FingerprintStore
var _ ports.FingerprintStore = (*Store)(nil)

// NewStore creates a JSON store at path
func NewStore(path string) *Store {
	return &Store{path: filesystem.ExpandHome(path)}
}

// Location returns the sidecar path
func (s *Store) Location() string {
	return s.path
}

// Load reads the sidecar. A missing file is an empty state.
func (s *Store) Load(_ context.Context) (domain.Fingerprints, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Fingerprints{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &domain.CorruptStateError{Path: s.path, Err: err}
	}
	if doc.Version > formatVersion {
		return nil, &domain.CorruptStateError{Path: s.path, Err: fmt.Errorf("unsupported version %d", doc.Version)}
	}

	records := make(domain.Fingerprints, len(doc.ProcessedFiles))
	for path, rec := range doc.ProcessedFiles {
		if rec.Hash == "" {
			return nil, &domain.CorruptStateError{Path: s.path, Err: fmt.Errorf("record %s has no hash", path)}
		}
		rec.Path = path
		records[path] = rec
	}
	return records, nil
}

// Save replaces the sidecar atomically
func (s *Store) Save(ctx context.Context, records domain.Fingerprints) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := document{Version: formatVersion, ProcessedFiles: map[string]domain.FingerprintRecord(records)}
	if doc.ProcessedFiles == nil {
		doc.ProcessedFiles = map[string]domain.FingerprintRecord{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return filesystem.WriteAtomic(s.path, append(data, '\n'), 0644)
}

// Close is a no-op for the file store
func (s *Store) Close() error {
	return nil
}
