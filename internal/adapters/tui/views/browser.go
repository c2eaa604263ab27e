package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/adapters/tui/styles"
	"doccat/internal/application/commands"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Relocate key.Binding
	Merge    key.Binding
	Open     key.Binding
	Edit     key.Binding
	Copy     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Relocate: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "relocate"),
	),
	Merge: key.NewBinding(
		key.WithKeys("M"),
		key.WithHelp("M", "merge duplicates"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// BrowserModel is the model for the catalog tree
type BrowserModel struct {
	ViewState
	runner  *commands.Runner
	opener  ports.DocumentOpener
	docRoot string
	copy    func(string) error

	catalog  *domain.Catalog
	roots    []*Node
	flat     []*Node
	expanded map[string]bool
	pager    *Paginator
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(runner *commands.Runner, opener ports.DocumentOpener, docRoot string) *BrowserModel {
	return &BrowserModel{
		runner:   runner,
		opener:   opener,
		docRoot:  docRoot,
		copy:     clipboard.WriteAll,
		expanded: make(map[string]bool),
		pager:    NewPaginator(20),
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadCatalog
}

func (m *BrowserModel) loadCatalog() tea.Msg {
	res, err := commands.NewListCommand(m.runner).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return catalogLoadedMsg{res.Catalog}
}

type catalogLoadedMsg struct {
	catalog *domain.Catalog
}

type errMsg struct {
	err error
}

type statusMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case catalogLoadedMsg:
		m.catalog = msg.catalog
		m.roots = BuildTree(msg.catalog, m.expanded)
		m.refreshFlat()
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case statusMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.pager.CursorUp()

	case key.Matches(msg, BrowserKeys.Down):
		m.pager.CursorDown()

	case key.Matches(msg, BrowserKeys.PageUp):
		m.pager.PrevPage()

	case key.Matches(msg, BrowserKeys.PageDown):
		m.pager.NextPage()

	case key.Matches(msg, BrowserKeys.Left):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if node.Kind == EntryNode {
			m.selectNode(node.Parent)
			return nil
		}
		m.setExpanded(node, false)

	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && node.Kind == SectionNode {
			m.setExpanded(node, true)
		}

	case key.Matches(msg, BrowserKeys.Enter):
		if node := m.selectedNode(); node != nil && node.Kind == SectionNode {
			m.setExpanded(node, !node.Expanded)
		}

	case key.Matches(msg, BrowserKeys.Relocate):
		node := m.selectedNode()
		if node == nil || node.Kind != EntryNode {
			m.SetMessage("select an entry to relocate", true)
			return nil
		}
		sections := m.catalog.SectionNames()
		return func() tea.Msg {
			return SwitchToRelocateMsg{Entry: node.Entry, From: node.Section, Sections: sections}
		}

	case key.Matches(msg, BrowserKeys.Merge):
		return func() tea.Msg { return SwitchToMergeMsg{} }

	case key.Matches(msg, BrowserKeys.Open):
		return m.open(m.selectedNode())

	case key.Matches(msg, BrowserKeys.Edit):
		return m.edit(m.selectedNode())

	case key.Matches(msg, BrowserKeys.Copy):
		node := m.selectedNode()
		if node == nil || node.Kind != EntryNode {
			return nil
		}
		if err := m.copy(node.Entry.DataPath); err != nil {
			m.SetMessage(fmt.Sprintf("clipboard: %v", err), true)
			return nil
		}
		m.SetMessage("Copied "+node.Entry.DataPath, false)

	case key.Matches(msg, BrowserKeys.Reload):
		return m.Reload()

	case key.Matches(msg, BrowserKeys.Help):
		return func() tea.Msg { return SwitchToHelpMsg{} }
	}
	return nil
}

// open shows an entry's document, or the catalog for a section row
func (m *BrowserModel) open(node *Node) tea.Cmd {
	if m.opener == nil || node == nil {
		return nil
	}
	target := ""
	if node.Kind == EntryNode {
		target = node.Entry.DataPath
	}
	return func() tea.Msg {
		if err := m.opener.OpenPath(target); err != nil {
			return errMsg{err}
		}
		if target == "" {
			return statusMsg{"Opened catalog"}
		}
		return statusMsg{"Opened " + target}
	}
}

// edit opens the entry's file, or its companion rendition when the entry
// points at a binary document
func (m *BrowserModel) edit(node *Node) tea.Cmd {
	if node == nil || node.Kind != EntryNode {
		return nil
	}
	target := node.Entry.DataPath
	if link := node.Entry.DerivedLink; link != "" && strings.HasSuffix(strings.ToLower(link), ".md") {
		target = link
	}
	path, err := filesystem.ResolveKey(m.docRoot, target)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	return func() tea.Msg { return OpenEditorMsg{Path: path} }
}

func (m *BrowserModel) setExpanded(node *Node, open bool) {
	node.Expanded = open
	m.expanded[node.Name] = open
	m.refreshFlat()
}

func (m *BrowserModel) selectNode(target *Node) {
	for i, n := range m.flat {
		if n == target {
			m.pager.SetCursor(i)
			return
		}
	}
}

func (m *BrowserModel) selectedNode() *Node {
	c := m.pager.Cursor()
	if c >= 0 && c < len(m.flat) {
		return m.flat[c]
	}
	return nil
}

func (m *BrowserModel) refreshFlat() {
	m.flat = Flatten(m.roots)
	m.pager.SetTotal(len(m.flat))
}

// View renders the browser
func (m *BrowserModel) View() string {
	if m.catalog == nil {
		if m.MessageErr {
			return styles.App.Render(m.RenderMessage())
		}
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(styles.Title.Render("doccat"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s · %d section(s), %d entr(ies)",
		m.runner.Catalog().Path(), len(m.catalog.Sections), m.catalog.EntryCount())))
	b.WriteString("\n\n")

	if len(m.flat) == 0 {
		b.WriteString(styles.MutedText.Render("The catalog has no sections."))
		b.WriteString("\n")
	}
	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		b.WriteString(m.renderNode(m.flat[i], i == m.pager.Cursor()))
		b.WriteString("\n")
	}
	if m.pager.TotalPages() > 1 {
		b.WriteString(styles.StatusBar.Render(fmt.Sprintf("page %d/%d", m.pager.CurrentPage(), m.pager.TotalPages())))
		b.WriteString("\n")
	}

	if msg := m.RenderMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
	}

	b.WriteString("\n")
	b.WriteString(renderHelpLine([]helpEntry{
		{"j/k", "navigate"},
		{"h/l", "collapse/expand"},
		{"m", "relocate"},
		{"M", "merge"},
		{"o", "open"},
		{"y", "copy"},
		{"?", "help"},
		{"q", "quit"},
	}))

	return styles.App.Render(b.String())
}

func (m *BrowserModel) renderNode(node *Node, selected bool) string {
	if node.Kind == EntryNode {
		text := node.Name
		if selected {
			return "  " + styles.TreeLeaf + styles.NodeSelected.Render(text)
		}
		return "  " + styles.TreeLeaf + styles.NodeEntry.Render(text) + " " + styles.EntryPath.Render(node.Entry.DataPath)
	}

	prefix := styles.TreeCollapsed
	if node.Expanded {
		prefix = styles.TreeExpanded
	}
	text := fmt.Sprintf("%s (%d)", node.Name, len(node.Children))
	style := styles.NodeSection
	if node.Duplicate {
		style = styles.NodeDuplicate
	}
	if selected {
		style = styles.NodeSelected
	}
	return styles.TreeBranch.Render(prefix) + style.Render(text)
}

// SetSize updates the view dimensions and the page size
func (m *BrowserModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.SetPageSize(max(height-10, 5))
}

// Reload reloads the catalog from disk, keeping expanded sections open
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadCatalog
}
