package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccat/internal/application/reconcile"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog, cfg.Catalog)
	assert.Equal(t, DefaultDocRoot, cfg.DocRoot)
	assert.Equal(t, DefaultDerivedRoot, cfg.DerivedRoot)
	assert.Equal(t, BackendJSON, cfg.State.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, reconcile.DefaultCategory, cfg.Categories.Default)
	assert.Equal(t, filepath.Join("Doc", ".doccat_state.json"), cfg.StatePath(".doccat_state.json", ".doccat_state.db"))
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doccat.yaml")
	content := `catalog: site/index.html
doc_root: site
state:
  backend: sqlite
categories:
  default: Inbox
  rules:
    - category: Manuals
      extensions: [".pdf"]
      keywords: ["manual"]
  overrides:
    - match: ./special.pdf
      category: Specials
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, "site/index.html", cfg.Catalog)
	assert.Equal(t, BackendSQLite, cfg.State.Backend)
	assert.Equal(t, filepath.Join("site", ".doccat_state.db"), cfg.StatePath(".doccat_state.json", ".doccat_state.db"))
	assert.Equal(t, "debug", cfg.Log.Level)

	policy := cfg.Policy()
	assert.Equal(t, "Inbox", policy.Default)
	require.Len(t, policy.Rules, 1)
	assert.Equal(t, "Manuals", policy.Rules[0].Category)
	assert.Equal(t, []string{".pdf"}, policy.Rules[0].Extensions)
	assert.Equal(t, "Specials", policy.Overrides["./special.pdf"])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DOCCAT_DOC_ROOT", "/srv/docs")
	t.Setenv("DOCCAT_STATE_PATH", "/var/lib/doccat/state.json")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", cfg.DocRoot)
	assert.Equal(t, "/var/lib/doccat/state.json", cfg.StatePath("a", "b"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "doccat.yaml")
	require.NoError(t, os.WriteFile(path, []byte("state:\n  backend: redis\n"), 0o644))
	_, err = Load(viper.New(), path)
	assert.ErrorContains(t, err, "state.backend")
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DOCCAT_DERIVED_ROOT", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("doc", DefaultDocRoot, "")
	fs.String("derived", DefaultDerivedRoot, "")
	fs.Bool("unrelated", false, "")
	require.NoError(t, fs.Parse([]string{"--doc", "papers"}))

	v := viper.New()
	require.NoError(t, BindFlags(v, fs))
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "papers", cfg.DocRoot)
	assert.Equal(t, "from-env", cfg.DerivedRoot)
	assert.Equal(t, DefaultCatalog, cfg.Catalog)
}
