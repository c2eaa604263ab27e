package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

// FileName is the default database name inside the document root
const FileName = ".doccat_state.db"

const schemaVersion = "1"

// Store implements ports.FingerprintStore using SQLite
type Store struct {
	db       *sql.DB
	dbPath   string
	readOnly bool
}

// Ensure Store implements FingerprintStore
var _ ports.FingerprintStore = (*Store)(nil)

// NewStore creates a store for the database at dbPath. The database is
// opened on first use and only created by Save.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: filesystem.ExpandHome(dbPath)}
}

// Location returns the database path
func (s *Store) Location() string {
	return s.dbPath
}

// openReader opens an existing database read-only
func (s *Store) openReader(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return s.classify(err)
	}
	s.db, s.readOnly = db, true
	return nil
}

// openWriter opens the database for writing, creating it and its schema
// when needed
func (s *Store) openWriter(ctx context.Context) error {
	if s.db != nil && !s.readOnly {
		return nil
	}
	s.Close()

	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// rollback journal: read-only opens must not leave -wal or -shm files
	db, err := sql.Open("sqlite3", s.dbPath+"?_journal_mode=DELETE")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS fingerprints (
			path TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			size INTEGER NOT NULL,
			ext TEXT NOT NULL,
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '`+schemaVersion+`');
	`)
	if err != nil {
		db.Close()
		return s.classify(err)
	}

	s.db, s.readOnly = db, false
	return nil
}

// classify turns errors that mean a damaged database into CorruptStateError
func (s *Store) classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrNotADB || sqliteErr.Code == sqlite3.ErrCorrupt) {
		return &domain.CorruptStateError{Path: s.dbPath, Err: err}
	}
	return fmt.Errorf("database error: %w", err)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db, s.readOnly = nil, false
		return err
	}
	return nil
}

// Load returns every stored record. A missing database loads as empty and
// is not created.
func (s *Store) Load(ctx context.Context) (domain.Fingerprints, error) {
	if s.db == nil {
		if _, err := os.Stat(s.dbPath); errors.Is(err, fs.ErrNotExist) {
			return domain.Fingerprints{}, nil
		} else if err != nil {
			return nil, fmt.Errorf("failed to stat state: %w", err)
		}
	}
	if err := s.openReader(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, hash, size, ext, first_seen, last_seen
		FROM fingerprints
	`)
	if err != nil && strings.Contains(err.Error(), "no such table") {
		// created but never saved
		return domain.Fingerprints{}, nil
	}
	if err != nil {
		return nil, s.classify(err)
	}
	defer rows.Close()

	records := domain.Fingerprints{}
	for rows.Next() {
		var rec domain.FingerprintRecord
		var firstSeen, lastSeen int64
		if err := rows.Scan(&rec.Path, &rec.Hash, &rec.Size, &rec.Ext, &firstSeen, &lastSeen); err != nil {
			return nil, &domain.CorruptStateError{Path: s.dbPath, Err: err}
		}
		rec.FirstSeen = time.Unix(firstSeen, 0).UTC()
		rec.LastSeen = time.Unix(lastSeen, 0).UTC()
		records[rec.Path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(err)
	}
	return records, nil
}

// Save replaces all records in one transaction, pruning paths that are no
// longer present. A damaged database file is moved aside and recreated.
func (s *Store) Save(ctx context.Context, records domain.Fingerprints) error {
	err := s.openWriter(ctx)
	if errors.Is(err, domain.ErrCorruptState) {
		if err := s.quarantine(); err != nil {
			return err
		}
		err = s.openWriter(ctx)
	}
	if err != nil {
		return err
	}

	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	stored, err := tx.Paths()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to list fingerprints: %w", err)
	}
	for _, path := range stored {
		if _, ok := records[path]; ok {
			continue
		}
		if err := tx.Delete(path); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to prune %s: %w", path, err)
		}
	}
	for _, path := range records.Paths() {
		rec := records[path]
		rec.Path = path
		if err := tx.Upsert(rec); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to store %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// quarantine renames a damaged database so a fresh one can be created
func (s *Store) quarantine() error {
	s.Close()
	aside := fmt.Sprintf("%s.corrupt.%d", s.dbPath, time.Now().Unix())
	if err := os.Rename(s.dbPath, aside); err != nil {
		return fmt.Errorf("failed to move damaged state aside: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(s.dbPath + suffix)
	}
	return nil
}

// BeginTx starts a write transaction, creating the database if needed
func (s *Store) BeginTx(ctx context.Context) (*StateTx, error) {
	if err := s.openWriter(ctx); err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &StateTx{tx: tx}, nil
}
