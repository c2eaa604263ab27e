package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"

	"doccat/internal/domain"
	"doccat/internal/ports"
)

// DefaultIgnoreFile is the gitignore-style exclusion file read from the document root
const DefaultIgnoreFile = ".doccatignore"

// Scanner implements ports.Scanner over a document root and its
// derived-rendition root
type Scanner struct {
	root        string
	derivedRoot string
	catalogPath string
	excluded    []string
	ignoreFile  string
	logger      zerolog.Logger
}

// Ensure Scanner implements ports.Scanner
var _ ports.Scanner = (*Scanner)(nil)

// ScannerOption configures the Scanner
type ScannerOption func(*Scanner)

// WithIgnoreFile sets the name of the ignore file looked up in the document root
func WithIgnoreFile(name string) ScannerOption {
	return func(s *Scanner) {
		s.ignoreFile = name
	}
}

// WithExcludedPaths keeps the given files out of every scan, together with
// their companions (path-journal, path.corrupt.N, path.tmp and the like).
// The fingerprint store location is passed here.
func WithExcludedPaths(paths ...string) ScannerOption {
	return func(s *Scanner) {
		for _, p := range paths {
			if p != "" {
				s.excluded = append(s.excluded, absPath(p))
			}
		}
	}
}

// WithScanLogger sets the logger used for skipped files
func WithScanLogger(l zerolog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a scanner. The catalog file itself is always excluded.
func NewScanner(root, derivedRoot, catalogPath string, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		root:        absPath(root),
		catalogPath: absPath(catalogPath),
		ignoreFile:  DefaultIgnoreFile,
		logger:      zerolog.Nop(),
	}
	if derivedRoot != "" {
		s.derivedRoot = absPath(derivedRoot)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the document root
func (s *Scanner) Root() string {
	return s.root
}

// Scan walks the document root, and the derived root when it lies outside
// it, hashing every candidate in sequence
func (s *Scanner) Scan(ctx context.Context) ([]domain.CandidateFile, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read document root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document root is not a directory: %s", s.root)
	}

	matcher, err := s.loadIgnore()
	if err != nil {
		return nil, err
	}

	found := make(map[string]domain.CandidateFile)
	roots := []string{s.root}
	if s.derivedRoot != "" && !within(s.root, s.derivedRoot) {
		roots = append(roots, s.derivedRoot)
	}
	for _, r := range roots {
		if err := s.walk(ctx, r, matcher, found); err != nil {
			return nil, err
		}
	}

	candidates := make([]domain.CandidateFile, 0, len(found))
	for _, c := range found {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Path < candidates[j].Path
	})
	return candidates, nil
}

func (s *Scanner) loadIgnore() (*ignore.GitIgnore, error) {
	if s.ignoreFile == "" {
		return nil, nil
	}
	path := filepath.Join(s.root, s.ignoreFile)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.ignoreFile, err)
	}
	return matcher, nil
}

func (s *Scanner) walk(ctx context.Context, walkRoot string, matcher *ignore.GitIgnore, found map[string]domain.CandidateFile) error {
	if _, err := os.Stat(walkRoot); errors.Is(err, fs.ErrNotExist) {
		// A missing derived root just means nothing was rendered yet
		return nil
	}

	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, _ := filepath.Rel(walkRoot, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != walkRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if path != walkRoot && matcher != nil && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || IsExcluded(d.Name()) || path == s.catalogPath || s.isExcludedPath(path) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			s.logger.Debug().Str("path", rel).Msg("ignored by ignore file")
			return nil
		}

		c, err := s.candidate(path)
		if err != nil {
			return err
		}
		found[c.Path] = c
		return nil
	})
}

func (s *Scanner) isExcludedPath(path string) bool {
	for _, p := range s.excluded {
		if path == p || strings.HasPrefix(path, p+"-") || strings.HasPrefix(path, p+".") {
			return true
		}
	}
	return false
}

func (s *Scanner) candidate(path string) (domain.CandidateFile, error) {
	key, err := CatalogKey(s.root, path)
	if err != nil {
		return domain.CandidateFile{}, err
	}
	hash, size, err := hashFile(path)
	if err != nil {
		return domain.CandidateFile{}, err
	}
	return domain.CandidateFile{
		Path:    key,
		AbsPath: path,
		Hash:    hash,
		Size:    size,
		Ext:     strings.ToLower(filepath.Ext(path)),
		Derived: s.derivedRoot != "" && within(s.derivedRoot, path),
	}, nil
}

// hashFile returns the hex sha256 of the file content and its size
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
