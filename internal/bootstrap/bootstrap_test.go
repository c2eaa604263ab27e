package bootstrap

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccat/internal/adapters/sqlite"
	"doccat/internal/adapters/statefile"
	"doccat/internal/application/commands"
	"doccat/internal/catalog"
	"doccat/internal/config"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Catalog:     filepath.Join(root, "index.html"),
		DocRoot:     root,
		DerivedRoot: filepath.Join(root, "md_outputs"),
		State:       config.StateConfig{Backend: backend},
		Scan:        config.ScanConfig{IgnoreFile: ".doccatignore"},
	}
}

func TestNewStateStore(t *testing.T) {
	cfg := testConfig(t, config.BackendJSON)
	store, err := NewStateStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &statefile.Store{}, store)
	assert.Equal(t, filepath.Join(cfg.DocRoot, statefile.FileName), store.Location())

	cfg = testConfig(t, config.BackendSQLite)
	store, err = NewStateStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, store)
	require.NoError(t, store.Close())

	cfg.State.Backend = "etcd"
	_, err = NewStateStore(cfg)
	assert.Error(t, err)
}

func TestNew_SyncsWithSQLiteBackend(t *testing.T) {
	cfg := testConfig(t, config.BackendSQLite)
	require.NoError(t, os.WriteFile(cfg.Catalog, []byte(catalog.Template("Docs")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DocRoot, "a.doc"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DocRoot, ".doccatignore"), []byte("*.tmpl\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DocRoot, "skip.tmpl"), []byte("t"), 0o644))

	app, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	res, err := commands.NewSyncCommand(app.Runner, false, false).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"./a.doc"}, res.Diff.New)
	assert.True(t, res.StateSaved)

	records, err := app.Runner.State().Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, records, "./a.doc")
	assert.NotContains(t, records, "./skip.tmpl")
}

func TestNew_StateInsideDocRootIsNotScanned(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.BackendSQLite)
	cfg.State.Path = filepath.Join(cfg.DocRoot, "state", "fingerprints.db")
	require.NoError(t, os.WriteFile(cfg.Catalog, []byte(catalog.Template("Docs")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DocRoot, "a.doc"), []byte("a"), 0o644))

	app, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	res, err := commands.NewSyncCommand(app.Runner, false, false).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"./a.doc"}, res.Diff.New)
	_, err = os.Stat(cfg.State.Path)
	require.NoError(t, err)

	scan, err := commands.NewScanCommand(app.Runner).Execute(ctx)
	require.NoError(t, err)
	assert.True(t, scan.Diff.IsEmpty(), "state database must not show up as a document")
	assert.Equal(t, []string{"./a.doc"}, scan.Diff.Unchanged)
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	logFile := filepath.Join(dir, "logs", "doccat.log")

	app, closer, err := Start("test", []string{"--doc", "papers", "--catalog", "papers/index.html", "--log-file", logFile}, io.Discard)
	require.NoError(t, err)
	defer closer.Close()
	defer app.Close()

	assert.Equal(t, "papers", app.Config.DocRoot)
	assert.Equal(t, filepath.Join(dir, "papers"), app.DocRoot())
	assert.Equal(t, filepath.Join(dir, "papers", "index.html"), app.Runner.Catalog().Path())
	assert.Equal(t, logFile, app.Config.Log.File)
}
