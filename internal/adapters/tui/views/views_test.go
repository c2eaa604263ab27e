package views

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/adapters/statefile"
	"doccat/internal/application/commands"
	"doccat/internal/catalog"
	"doccat/internal/domain"
)

const testCatalog = `<html><body>
<aside><div id="lists">
<section class="category" data-category="Guides">
  <h2>Guides</h2>
  <ul class="files">
    <li class="file" data-path="./setup.pdf" data-pdf="./md_outputs/setup.md">
      <div class="meta"><div class="title"><a href="#" class="file-link">Setup</a></div></div>
    </li>
  </ul>
</section>
<section class="category" data-category="Reference">
  <h2>Reference</h2>
  <ul class="files">
    <li class="file" data-path="./api.pdf" data-pdf="./api.pdf">
      <div class="meta"><div class="title"><a href="#" class="file-link">API</a></div></div>
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

type fixture struct {
	root        string
	catalogPath string
	runner      *commands.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	catalogPath := filepath.Join(root, "index.html")
	if err := os.WriteFile(catalogPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	return &fixture{
		root:        root,
		catalogPath: catalogPath,
		runner: commands.NewRunner(
			filesystem.NewCatalogStore(catalogPath),
			statefile.NewStore(filepath.Join(root, statefile.FileName)),
			filesystem.NewScanner(root, filepath.Join(root, "md_outputs"), catalogPath),
		),
	}
}

func (f *fixture) parse(t *testing.T) *domain.Catalog {
	t.Helper()
	data, err := os.ReadFile(f.catalogPath)
	if err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Parse(string(data))
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

type fakeOpener struct {
	opened []string
}

func (o *fakeOpener) OpenPath(dataPath string) error {
	o.opened = append(o.opened, dataPath)
	return nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedBrowser returns a browser showing the fixture catalog
func loadedBrowser(t *testing.T, f *fixture, opener *fakeOpener) *BrowserModel {
	t.Helper()
	m := NewBrowserModel(f.runner, opener, f.root)
	m.Update(m.Init()())
	if m.catalog == nil {
		t.Fatalf("catalog not loaded: %s", m.Message)
	}
	return m
}

func TestBuildTree(t *testing.T) {
	f := newFixture(t)
	roots := BuildTree(f.parse(t), map[string]bool{"Reference": true})

	if len(roots) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(roots))
	}
	if !roots[0].Duplicate || roots[1].Duplicate || !roots[2].Duplicate {
		t.Errorf("duplicate flags wrong: %v %v %v", roots[0].Duplicate, roots[1].Duplicate, roots[2].Duplicate)
	}

	flat := Flatten(roots)
	names := make([]string, 0, len(flat))
	for _, n := range flat {
		names = append(names, n.Name)
	}
	if got := strings.Join(names, ","); got != "Guides,Reference,API,guides" {
		t.Errorf("unexpected rows: %s", got)
	}
	if flat[2].Parent != roots[1] || flat[2].Entry.DataPath != "./api.pdf" {
		t.Error("entry row not linked to its section")
	}
}

func TestBrowser_Navigation(t *testing.T) {
	f := newFixture(t)
	m := loadedBrowser(t, f, &fakeOpener{})

	if len(m.flat) != 3 {
		t.Fatalf("expected collapsed sections, got %d rows", len(m.flat))
	}

	m.Update(keyPress("l"))
	if len(m.flat) != 4 || m.flat[1].Kind != EntryNode {
		t.Fatalf("expected Guides expanded, got %d rows", len(m.flat))
	}

	m.Update(keyPress("j"))
	if node := m.selectedNode(); node == nil || node.Entry.DataPath != "./setup.pdf" {
		t.Fatalf("expected setup entry selected, got %+v", node)
	}

	m.Update(keyPress("h"))
	if node := m.selectedNode(); node == nil || node.Kind != SectionNode || node.Name != "Guides" {
		t.Errorf("expected cursor back on section, got %+v", node)
	}

	m.Update(keyPress("enter"))
	if len(m.flat) != 3 {
		t.Errorf("expected section collapsed, got %d rows", len(m.flat))
	}
}

func TestBrowser_KeepsExpansionOnReload(t *testing.T) {
	f := newFixture(t)
	m := loadedBrowser(t, f, &fakeOpener{})
	m.Update(keyPress("l"))

	m.Update(m.Reload()())
	if len(m.flat) != 4 {
		t.Errorf("expected Guides to stay expanded, got %d rows", len(m.flat))
	}
}

func TestBrowser_EntryActions(t *testing.T) {
	f := newFixture(t)
	opener := &fakeOpener{}
	m := loadedBrowser(t, f, opener)
	var copied string
	m.copy = func(s string) error {
		copied = s
		return nil
	}

	m.Update(keyPress("l"))
	m.Update(keyPress("j"))

	m.Update(keyPress("y"))
	if copied != "./setup.pdf" {
		t.Errorf("expected data path copied, got %q", copied)
	}

	_, cmd := m.Update(keyPress("o"))
	if cmd == nil {
		t.Fatal("expected open command")
	}
	cmd()
	if len(opener.opened) != 1 || opener.opened[0] != "./setup.pdf" {
		t.Errorf("unexpected opens: %v", opener.opened)
	}

	_, cmd = m.Update(keyPress("e"))
	msg, ok := cmd().(OpenEditorMsg)
	if !ok {
		t.Fatal("expected OpenEditorMsg")
	}
	if want := filepath.Join(f.root, "md_outputs", "setup.md"); msg.Path != want {
		t.Errorf("expected editor on rendition %s, got %s", want, msg.Path)
	}

	_, cmd = m.Update(keyPress("m"))
	sw, ok := cmd().(SwitchToRelocateMsg)
	if !ok {
		t.Fatal("expected SwitchToRelocateMsg")
	}
	if sw.From != "Guides" || sw.Entry.DataPath != "./setup.pdf" || len(sw.Sections) != 3 {
		t.Errorf("unexpected relocate request: %+v", sw)
	}
}

func TestBrowser_CopyError(t *testing.T) {
	f := newFixture(t)
	m := loadedBrowser(t, f, &fakeOpener{})
	m.copy = func(string) error { return errors.New("no clipboard") }

	m.Update(keyPress("l"))
	m.Update(keyPress("j"))
	m.Update(keyPress("y"))
	if !m.MessageErr || !strings.Contains(m.Message, "no clipboard") {
		t.Errorf("expected clipboard error, got %q", m.Message)
	}
}

func TestBrowser_RelocateNeedsEntry(t *testing.T) {
	f := newFixture(t)
	m := loadedBrowser(t, f, &fakeOpener{})

	_, cmd := m.Update(keyPress("m"))
	if cmd != nil {
		t.Error("expected no command on a section row")
	}
	if !m.MessageErr {
		t.Error("expected an error message")
	}
}

func TestRelocateModel_ExcludesSourceSection(t *testing.T) {
	f := newFixture(t)
	m := NewRelocateModel(f.runner)
	m.SetSource(domain.Entry{DataPath: "./setup.pdf"}, "Guides", []string{"Guides", "Reference", "guides"})

	if len(m.sections) != 1 || m.sections[0] != "Reference" {
		t.Errorf("expected only Reference offered, got %v", m.sections)
	}
}

func TestRelocateModel_Confirm(t *testing.T) {
	f := newFixture(t)
	m := NewRelocateModel(f.runner)
	m.SetSource(domain.Entry{DataPath: "./api.pdf", Title: "API"}, "Reference", []string{"Guides", "Reference", "guides"})

	m.Update(keyPress("enter"))
	if !m.confirming || m.dest != "Guides" {
		t.Fatalf("expected confirmation for Guides, got confirming=%v dest=%q", m.confirming, m.dest)
	}

	_, cmd := m.Update(keyPress("n"))
	if cmd != nil || m.confirming {
		t.Fatal("expected cancel to return to the picker")
	}

	m.Update(keyPress("enter"))
	_, cmd = m.Update(keyPress("y"))
	if cmd == nil {
		t.Fatal("expected relocate command")
	}
	changed, ok := cmd().(CatalogChangedMsg)
	if !ok {
		t.Fatal("expected CatalogChangedMsg")
	}
	if !strings.Contains(changed.Message, "./api.pdf") {
		t.Errorf("unexpected message %q", changed.Message)
	}

	cat := f.parse(t)
	refs := cat.Lookup("./api.pdf")
	if len(refs) != 1 || cat.Sections[refs[0].Section].Name != "Guides" {
		t.Errorf("entry not moved to Guides")
	}
}

func TestRelocateModel_NewCategory(t *testing.T) {
	f := newFixture(t)
	m := NewRelocateModel(f.runner)
	m.SetSource(domain.Entry{DataPath: "./api.pdf"}, "Reference", []string{"Guides", "Reference"})

	m.Update(keyPress("tab"))
	for _, r := range "Manuals" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m.Update(keyPress("enter"))
	if m.dest != "Manuals" {
		t.Fatalf("expected typed destination, got %q", m.dest)
	}

	_, cmd := m.Update(keyPress("y"))
	if _, ok := cmd().(CatalogChangedMsg); !ok {
		t.Fatal("expected CatalogChangedMsg")
	}
	if _, ok := f.parse(t).FindSection("Manuals"); !ok {
		t.Error("expected Manuals section to be created")
	}
}

func TestMergeModel(t *testing.T) {
	f := newFixture(t)
	m := NewMergeModel(f.runner)

	m.Update(m.Init()())
	if !m.hasWork() || m.preview.Merged[0] != "Guides" {
		t.Fatalf("expected a Guides merge preview, got %+v", m.preview)
	}
	if !strings.Contains(m.View(), "Merge these categories?") {
		t.Error("expected confirmation prompt")
	}

	_, cmd := m.Update(keyPress("y"))
	if _, ok := cmd().(CatalogChangedMsg); !ok {
		t.Fatal("expected CatalogChangedMsg")
	}
	if names := f.parse(t).SectionNames(); len(names) != 2 {
		t.Errorf("expected 2 sections after merge, got %v", names)
	}

	m.Update(m.Init()())
	if m.hasWork() {
		t.Error("expected nothing left to merge")
	}
	_, cmd = m.Update(keyPress("x"))
	if _, ok := cmd().(SwitchToBrowserMsg); !ok {
		t.Error("expected any key to return to the browser")
	}
}
