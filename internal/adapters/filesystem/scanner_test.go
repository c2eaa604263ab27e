package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupDocRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a.pdf"), "alpha")
	writeFile(t, filepath.Join(root, "b.doc"), "bravo")
	writeFile(t, filepath.Join(root, "index.html"), "<html></html>")
	writeFile(t, filepath.Join(root, "index.html.bak.20240101120000"), "old")
	writeFile(t, filepath.Join(root, ".hidden"), "x")
	writeFile(t, filepath.Join(root, "~$lock.docx"), "x")
	writeFile(t, filepath.Join(root, "INDEX.md"), "x")
	writeFile(t, filepath.Join(root, "notes.txt~"), "x")
	writeFile(t, filepath.Join(root, "skip.log"), "x")
	writeFile(t, filepath.Join(root, "drafts", "x.pdf"), "x")
	writeFile(t, filepath.Join(root, ".git", "config"), "x")
	writeFile(t, filepath.Join(root, "md_outputs", "a.md"), "# alpha")
	writeFile(t, filepath.Join(root, DefaultIgnoreFile), "*.log\ndrafts/\n")

	return root
}

func TestScanner_Scan(t *testing.T) {
	root := setupDocRoot(t)
	s := NewScanner(root, filepath.Join(root, "md_outputs"), filepath.Join(root, "index.html"))

	candidates, err := s.Scan(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"./a.pdf", "./b.doc", "./md_outputs/a.md"}, paths)

	sum := sha256.Sum256([]byte("alpha"))
	assert.Equal(t, hex.EncodeToString(sum[:]), candidates[0].Hash)
	assert.Equal(t, int64(5), candidates[0].Size)
	assert.Equal(t, ".pdf", candidates[0].Ext)
	assert.False(t, candidates[0].Derived)
	assert.True(t, candidates[2].Derived)
	assert.Equal(t, filepath.Join(root, "md_outputs", "a.md"), candidates[2].AbsPath)
}

func TestScanner_WithoutIgnoreFile(t *testing.T) {
	root := setupDocRoot(t)
	s := NewScanner(root, "", filepath.Join(root, "index.html"), WithIgnoreFile(""))

	candidates, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 5, "skip.log and drafts/x.pdf are no longer ignored")
	for _, c := range candidates {
		assert.False(t, c.Derived)
	}
}

func TestScanner_ExcludesStateFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "alpha")
	writeFile(t, filepath.Join(root, "state", "fingerprints.db"), "db")
	writeFile(t, filepath.Join(root, "state", "fingerprints.db-journal"), "j")
	writeFile(t, filepath.Join(root, "state", "fingerprints.db.corrupt.1700000000"), "old")
	writeFile(t, filepath.Join(root, "state", "fingerprints.dbx"), "kept")

	s := NewScanner(root, "", filepath.Join(root, "index.html"),
		WithExcludedPaths(filepath.Join(root, "state", "fingerprints.db"), ""))

	candidates, err := s.Scan(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, c := range candidates {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{"./a.pdf", "./state/fingerprints.dbx"}, paths)
}

func TestScanner_DerivedRootOutsideDocRoot(t *testing.T) {
	root := t.TempDir()
	derived := filepath.Join(root, "outputs")
	docs := filepath.Join(root, "docs")
	writeFile(t, filepath.Join(docs, "a.pdf"), "alpha")
	writeFile(t, filepath.Join(derived, "a.md"), "alpha")

	s := NewScanner(docs, derived, filepath.Join(docs, "index.html"))
	candidates, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "./../outputs/a.md", candidates[0].Path)
	assert.True(t, candidates[0].Derived)
}

func TestScanner_MissingDerivedRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.pdf"), "alpha")

	s := NewScanner(root, filepath.Join(root, "md_outputs"), filepath.Join(root, "index.html"))
	candidates, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestScanner_Errors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "plain")
	writeFile(t, file, "x")

	_, err := NewScanner(filepath.Join(root, "missing"), "", "").Scan(context.Background())
	assert.Error(t, err)

	_, err = NewScanner(file, "", "").Scan(context.Background())
	assert.ErrorContains(t, err, "not a directory")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewScanner(root, "", "").Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"report.pdf", false},
		{"notes.md", false},
		{".DS_Store", true},
		{"~$report.docx", true},
		{"report.docx~", true},
		{".report.swp", true},
		{"draft.swo", true},
		{"upload.tmp", true},
		{"#scratch#", true},
		{"Thumbs.db", true},
		{"desktop.ini", true},
		{"index.html.bak", true},
		{"index.html.bak.20240101120000", true},
		{"INDEX.md", true},
		{"_autogen_index.md", true},
		{"backup-plan.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExcluded(tt.name))
		})
	}
}

func TestResolveKey(t *testing.T) {
	root := t.TempDir()

	abs, err := ResolveKey(root, "./md_outputs/a.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "md_outputs", "a.md"), abs)

	_, err = ResolveKey(root, "./../etc/passwd")
	assert.ErrorContains(t, err, "outside the document root")

	key, err := CatalogKey(root, filepath.Join(root, "sub", "x.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "./sub/x.pdf", key)
}
