package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccat/internal/domain"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(filepath.Join(t.TempDir(), FileName))
	defer s.Close()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	records := domain.Fingerprints{}
	records.Record(domain.CandidateFile{Path: "./a.pdf", Hash: "h1", Size: 3, Ext: ".pdf"}, now)
	records.Record(domain.CandidateFile{Path: "./b.md", Hash: "h2", Size: 4, Ext: ".md"}, now)
	require.NoError(t, s.Save(ctx, records))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"./a.pdf", "./b.md"}, loaded.Paths())
	assert.Equal(t, "h2", loaded["./b.md"].Hash)
	assert.True(t, now.Equal(loaded["./a.pdf"].FirstSeen))

	delete(records, "./a.pdf")
	require.NoError(t, s.Save(ctx, records))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"./b.md"}, loaded.Paths())
}

func TestStore_LoadMissingCreatesNothing(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "docs")
	s := NewStore(filepath.Join(dir, FileName))
	defer s.Close()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "load must not create the state directory")
}

func TestStore_LoadLeavesNoJournalFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	w := NewStore(path)
	now := time.Now()
	records := domain.Fingerprints{}
	records.Record(domain.CandidateFile{Path: "./a.pdf", Hash: "h", Size: 1, Ext: ".pdf"}, now)
	require.NoError(t, w.Save(ctx, records))
	require.NoError(t, w.Close())

	before, err := os.Stat(path)
	require.NoError(t, err)

	r := NewStore(path)
	loaded, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, loaded, "./a.pdf")
	require.NoError(t, r.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{FileName}, names)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s := NewStore(path)
	defer s.Close()
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_Transaction(t *testing.T) {
	ctx := context.Background()
	s := NewStore(filepath.Join(t.TempDir(), FileName))
	defer s.Close()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Upsert(domain.FingerprintRecord{Path: "./x.pdf", Hash: "h"}))
	require.NoError(t, tx.Rollback())

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Upsert(domain.FingerprintRecord{Path: "./x.pdf", Hash: "h"}))
	require.NoError(t, tx.Delete("./missing.pdf"))
	require.NoError(t, tx.Commit())

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, loaded, "./x.pdf")
}

func TestStore_CorruptDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database ", 400)), 0644))

	s := NewStore(path)
	defer s.Close()

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptState)

	require.NoError(t, s.Save(ctx, domain.Fingerprints{}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	matches, err := filepath.Glob(path + ".corrupt.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// BenchmarkStore_Save measures a full replace of a realistic state
func BenchmarkStore_Save(b *testing.B) {
	ctx := context.Background()
	s := NewStore(filepath.Join(b.TempDir(), FileName))
	defer s.Close()

	now := time.Now()
	records := domain.Fingerprints{}
	for i := 0; i < 2000; i++ {
		records.Record(domain.CandidateFile{
			Path: fmt.Sprintf("./docs/%04d.pdf", i),
			Hash: "0123456789abcdef",
			Size: int64(i),
			Ext:  ".pdf",
		}, now)
	}

	b.ResetTimer()
	for b.Loop() {
		if err := s.Save(ctx, records); err != nil {
			b.Fatalf("save failed: %v", err)
		}
	}
}
