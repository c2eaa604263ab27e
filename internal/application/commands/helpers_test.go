package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/adapters/statefile"
	"doccat/internal/catalog"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

const guidesCatalog = `<html><body>
<aside class="sidebar"><div id="lists">
        <section class="category" data-category="Guides">
          <h2>Guides</h2>
          <ul class="files">
            <li class="file" data-path="./setup.pdf" data-pdf="./setup.pdf">
              <div class="meta">
                <div class="title"><a href="#" class="file-link">Setup</a></div>
                <div class="desc"></div>
                <div class="tags small-muted">PDF · Guides</div>
              </div>
            </li>
          </ul>
        </section>
        <section class="category" data-category="Reference">
          <h2>Reference</h2>
          <ul class="files">
            <li class="file" data-path="./api.pdf" data-pdf="./api.pdf">
              <div class="meta">
                <div class="title"><a href="#" class="file-link">API</a></div>
                <div class="tags small-muted">PDF · Reference</div>
              </div>
            </li>
          </ul>
        </section>
        <section class="category" data-category="guides">
          <h2>guides</h2>
          <ul class="files">
            <li class="file" data-path="./faq.md" data-pdf="./faq.md">
              <div class="meta"><div class="title"><a href="#" class="file-link">FAQ</a></div></div>
            </li>
            <li class="file" data-path="./setup.pdf" data-pdf="./setup.pdf">
              <div class="meta"><div class="title"><a href="#" class="file-link">Setup again</a></div></div>
            </li>
          </ul>
        </section>
</div>
</aside>
</body></html>
`

type testEnv struct {
	docRoot     string
	catalogPath string
	statePath   string
	store       *filesystem.CatalogStore
	state       *statefile.Store
	runner      *Runner
}

func clock() time.Time {
	return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
}

// newTestEnv lays out a document root holding the catalog and the given
// files
func newTestEnv(t *testing.T, buf string, files map[string]string, opts ...RunnerOption) *testEnv {
	t.Helper()
	docRoot := t.TempDir()
	env := &testEnv{
		docRoot:     docRoot,
		catalogPath: filepath.Join(docRoot, "index.html"),
		statePath:   filepath.Join(docRoot, statefile.FileName),
	}
	if buf != "" {
		writeTestFile(t, env.catalogPath, buf)
	}
	for name, content := range files {
		writeTestFile(t, filepath.Join(docRoot, filepath.FromSlash(name)), content)
	}

	env.store = filesystem.NewCatalogStore(env.catalogPath)
	env.state = statefile.NewStore(env.statePath)
	scanner := filesystem.NewScanner(docRoot, filepath.Join(docRoot, "md_outputs"), env.catalogPath)
	opts = append([]RunnerOption{WithClock(clock)}, opts...)
	env.runner = NewRunner(env.store, env.state, scanner, opts...)
	return env
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (e *testEnv) readCatalog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.catalogPath)
	require.NoError(t, err)
	return string(data)
}

func (e *testEnv) parseCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	cat, err := catalog.Parse(e.readCatalog(t))
	require.NoError(t, err)
	return cat
}

func (e *testEnv) backups(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.docRoot)
	require.NoError(t, err)
	var out []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "index.html.bak.") {
			out = append(out, entry.Name())
		}
	}
	return out
}

func (e *testEnv) loadState(t *testing.T) domain.Fingerprints {
	t.Helper()
	records, err := e.state.Load(context.Background())
	require.NoError(t, err)
	return records
}

func (e *testEnv) saveState(t *testing.T, records domain.Fingerprints) {
	t.Helper()
	require.NoError(t, e.state.Save(context.Background(), records))
}

// stubProposer returns canned proposals
type stubProposer struct {
	proposals []ports.EntryProposal
	err       error
	got       []ports.FileInfo
}

func (s *stubProposer) ProposeEntries(_ context.Context, files []ports.FileInfo, _ []string) ([]ports.EntryProposal, error) {
	s.got = files
	return s.proposals, s.err
}

func (s *stubProposer) IsAvailable() bool { return true }
