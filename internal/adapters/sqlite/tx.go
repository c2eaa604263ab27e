package sqlite

import (
	"database/sql"

	"doccat/internal/domain"
)

// StateTx groups fingerprint updates into one atomic change
type StateTx struct {
	tx *sql.Tx
}

// Upsert inserts or updates a record
func (t *StateTx) Upsert(rec domain.FingerprintRecord) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO fingerprints (path, hash, size, ext, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Path, rec.Hash, rec.Size, rec.Ext, rec.FirstSeen.Unix(), rec.LastSeen.Unix())
	return err
}

// Delete removes a record by path
func (t *StateTx) Delete(path string) error {
	_, err := t.tx.Exec(`DELETE FROM fingerprints WHERE path = ?`, path)
	return err
}

// Paths returns every stored path
func (t *StateTx) Paths() ([]string, error) {
	rows, err := t.tx.Query(`SELECT path FROM fingerprints`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Commit commits the transaction
func (t *StateTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *StateTx) Rollback() error {
	return t.tx.Rollback()
}
