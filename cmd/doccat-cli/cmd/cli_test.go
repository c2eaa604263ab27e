package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testCatalog = `<html><body>
<aside class="sidebar"><div id="lists">
<section class="category" data-category="Guides">
  <h2>Guides</h2>
  <ul class="files">
    <li class="file" data-path="./setup.pdf" data-pdf="./setup.pdf">
      <div class="meta"><div class="title"><a href="#" class="file-link">Setup</a></div>
      <div class="tags small-muted">PDF · Guides</div></div>
    </li>
  </ul>
</section>
<section class="category" data-category="Reference">
  <h2>Reference</h2>
  <ul class="files">
    <li class="file" data-path="./api.pdf" data-pdf="./api.pdf">
      <div class="meta"><div class="title"><a href="#" class="file-link">API</a></div>
      <div class="tags small-muted">PDF · Reference</div></div>
    </li>
  </ul>
</section>
<section class="category" data-category="guides">
  <h2>guides</h2>
  <ul class="files">
    <li class="file" data-path="./faq.md" data-pdf="./faq.md">
      <div class="meta"><div class="title"><a href="#" class="file-link">FAQ</a></div></div>
    </li>
  </ul>
</section>
</div>
</aside>
</body></html>
`

type cliEnv struct {
	root    string
	docRoot string
	catalog string
}

// newCLIEnv lays out <tmp>/Doc with the catalog and files, and runs from
// <tmp> so no stray config file is picked up
func newCLIEnv(t *testing.T, buf string, files map[string]string) *cliEnv {
	t.Helper()
	root := t.TempDir()
	t.Chdir(root)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))

	env := &cliEnv{root: root, docRoot: filepath.Join(root, "Doc")}
	env.catalog = filepath.Join(env.docRoot, "index.html")
	require.NoError(t, os.MkdirAll(env.docRoot, 0o755))
	if buf != "" {
		require.NoError(t, os.WriteFile(env.catalog, []byte(buf), 0o644))
	}
	for name, content := range files {
		path := filepath.Join(env.docRoot, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return env
}

func (e *cliEnv) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(append([]string{"--log-level", "error", "--no-color"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (e *cliEnv) readCatalog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.catalog)
	require.NoError(t, err)
	return string(data)
}

func TestSync_DefaultLayout(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{
		"setup.pdf": "s",
		"api.pdf":   "a",
		"faq.md":    "f",
		"a.doc":     "new document",
	})

	code, out, errOut := env.run("sync")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "Applied 1 insert(s)")
	assert.Contains(t, out, "Backup: ")
	assert.Contains(t, env.readCatalog(t), `data-path="./a.doc"`)

	_, err := os.Stat(filepath.Join(env.docRoot, ".doccat_state.json"))
	assert.NoError(t, err)

	code, out, _ = env.run("sync")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Nothing to do")
}

func TestSync_DryRunWritesNothing(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"a.doc": "new"})

	code, out, _ := env.run("sync", "--dry-run")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Would apply 1 insert(s)")
	assert.Equal(t, testCatalog, env.readCatalog(t))

	_, err := os.Stat(filepath.Join(env.docRoot, ".doccat_state.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFlagsOverrideLayout(t *testing.T) {
	env := newCLIEnv(t, "", nil)
	other := filepath.Join(env.root, "elsewhere")
	require.NoError(t, os.MkdirAll(other, 0o755))
	catalogPath := filepath.Join(other, "catalog.html")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(other, "loose.pdf"), []byte("l"), 0o644))

	code, out, errOut := env.run("--catalog", catalogPath, "--doc", other, "--derived", filepath.Join(other, "md"), "list-unreferenced")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "./loose.pdf")
}

func TestConfigFile(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"notes.txt": "n"})
	config := "categories:\n  default: Inbox\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "doccat.yaml"), []byte(config), 0o644))

	code, _, errOut := env.run("sync")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, env.readCatalog(t), "<h2>Inbox</h2>")
}

func TestMissingCatalog(t *testing.T) {
	env := newCLIEnv(t, "", nil)

	code, _, errOut := env.run("sync")
	assert.Equal(t, ExitCatalog, code)
	assert.Contains(t, errOut, "catalog not found")

	code, _, _ = env.run("sync", "--dry-run")
	assert.Equal(t, ExitOK, code)
}

func TestMalformedCatalog(t *testing.T) {
	env := newCLIEnv(t, "just some text", nil)

	code, _, _ := env.run("sync")
	assert.Equal(t, ExitCatalog, code)
	assert.Equal(t, "just some text", env.readCatalog(t))
}

func TestMerge(t *testing.T) {
	env := newCLIEnv(t, testCatalog, nil)

	code, out, _ := env.run("merge", "-n")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Would merge 1 category group(s): Guides")
	assert.Equal(t, testCatalog, env.readCatalog(t))

	code, out, _ = env.run("merge")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Merged 1 category group(s)")
	assert.Equal(t, 1, strings.Count(strings.ToLower(env.readCatalog(t)), "<h2>guides</h2>"))
}

func TestRelocate(t *testing.T) {
	env := newCLIEnv(t, testCatalog, nil)

	code, out, errOut := env.run("relocate", "./api.pdf", "Guides")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, `Moved ./api.pdf from "Reference" to "Guides"`)
	buf := env.readCatalog(t)
	assert.Equal(t, 2, strings.Count(buf, "PDF · Guides"))
	assert.NotContains(t, buf, "PDF · Reference")
}

func TestRelocate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "missing entry", args: []string{"relocate", "./missing.pdf", "Guides"}, code: ExitConflict},
		{name: "same category", args: []string{"relocate", "./api.pdf", "Reference"}, code: ExitConflict},
		{name: "not relative", args: []string{"relocate", "api.pdf", "Guides"}, code: ExitUsage},
		{name: "wrong arg count", args: []string{"relocate", "./api.pdf"}, code: ExitError},
		{name: "dry run", args: []string{"relocate", "./missing.pdf", "Guides", "--dry-run"}, code: ExitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t, testCatalog, nil)
			code, _, _ := env.run(tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, testCatalog, env.readCatalog(t))
		})
	}
}

func TestScan_Formats(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"api.pdf": "a", "b.pdf": "b"})

	code, out, _ := env.run("scan", "--format", "json")
	require.Equal(t, ExitOK, code)
	var report scanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"./api.pdf", "./b.pdf"}, report.New)

	code, out, _ = env.run("scan", "-f", "yaml")
	require.Equal(t, ExitOK, code)
	report = scanReport{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"./api.pdf", "./b.pdf"}, report.New)

	code, _, errOut := env.run("scan", "--format", "xml")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "unknown format")
}

func TestOrphans(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"api.pdf": "a", "gone.pdf": "g"})
	code, _, _ := env.run("sync")
	require.Equal(t, ExitOK, code)

	// drop the entry by hand, keeping the fingerprint
	code, _, _ = env.run("remove", "--pattern", `gone\.pdf$`)
	require.Equal(t, ExitOK, code)

	code, out, _ := env.run("orphans")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "./gone.pdf")

	code, out, _ = env.run("orphans", "--prune")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Pruned 1 orphaned record(s)")
}

func TestRemove_RequiresPattern(t *testing.T) {
	env := newCLIEnv(t, testCatalog, nil)

	code, _, _ := env.run("remove")
	assert.Equal(t, ExitError, code)

	code, _, _ = env.run("remove", "--pattern", "(")
	assert.Equal(t, ExitUsage, code)
	assert.Equal(t, testCatalog, env.readCatalog(t))
}

func TestInit(t *testing.T) {
	env := newCLIEnv(t, "", nil)

	code, out, _ := env.run("init", "--dry-run")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Would create catalog")
	_, err := os.Stat(env.catalog)
	assert.True(t, os.IsNotExist(err))

	code, _, errOut := env.run("init", "--title", "Team Docs")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, env.readCatalog(t), "Team Docs")

	code, _, _ = env.run("init")
	assert.Equal(t, ExitUsage, code)
}

func TestList(t *testing.T) {
	env := newCLIEnv(t, testCatalog, nil)

	code, out, _ := env.run("list", "--sections")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Guides (1)\nReference (1)\nguides (1)\n")

	code, out, _ = env.run("list", "--format", "json")
	require.Equal(t, ExitOK, code)
	var report listReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Sections, 3)
	assert.Equal(t, "./api.pdf", report.Sections[1].Entries[0].DataPath)
}

func TestExitCode_DryRun(t *testing.T) {
	assert.Equal(t, ExitOK, exitCode(nil, false))
	assert.Equal(t, ExitOK, exitCode(os.ErrNotExist, true))
	assert.Equal(t, ExitError, exitCode(os.ErrNotExist, false))
}

func TestSync_ReportsDuplicateDataPaths(t *testing.T) {
	buf := strings.Replace(testCatalog, `data-path="./faq.md" data-pdf="./faq.md"`, `data-path="./api.pdf" data-pdf="./api.pdf"`, 1)
	env := newCLIEnv(t, buf, map[string]string{"setup.pdf": "s", "api.pdf": "a"})

	code, out, errOut := env.run("sync", "--dry-run")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "1 conflict(s)")
	assert.Contains(t, out, "conflict ./api.pdf: data path appears 2 times")

	code, out, errOut = env.run("merge", "--dry-run")
	require.Equal(t, ExitOK, code, errOut)
	assert.Contains(t, out, "conflict ./api.pdf: data path appears 2 times")
	assert.Equal(t, buf, env.readCatalog(t))
}

func TestSQLiteBackend_ReadOnlyCommandsCreateNoDatabase(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"setup.pdf": "s", "a.doc": "new"})
	t.Setenv("DOCCAT_STATE_BACKEND", "sqlite")
	dbPath := filepath.Join(env.docRoot, ".doccat_state.db")

	for _, args := range [][]string{{"scan"}, {"sync", "--dry-run"}, {"orphans"}, {"list-unreferenced"}} {
		code, _, errOut := env.run(args...)
		require.Equal(t, ExitOK, code, "%v: %s", args, errOut)
		matches, err := filepath.Glob(dbPath + "*")
		require.NoError(t, err)
		assert.Empty(t, matches, "%v wrote state", args)
	}

	code, _, errOut := env.run("sync")
	require.Equal(t, ExitOK, code, errOut)
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	code, out, _ := env.run("sync")
	assert.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Nothing to do")
}

func TestLogFileFlag(t *testing.T) {
	env := newCLIEnv(t, testCatalog, map[string]string{"a.doc": "new"})
	logPath := filepath.Join(env.root, "logs", "doccat.log")

	code, _, errOut := env.run("--log-level", "info", "--log-file", logPath, "sync")
	require.Equal(t, ExitOK, code, errOut)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "catalog committed")
}
