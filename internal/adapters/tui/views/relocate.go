package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/tui/styles"
	"doccat/internal/application/commands"
	"doccat/internal/domain"
)

// RelocateKeyMap defines key bindings for the destination picker
type RelocateKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Select key.Binding
	Cancel key.Binding
}

var RelocateKeys = RelocateKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "new category"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// RelocateModel picks a destination category for one entry and relocates it
// after confirmation
type RelocateModel struct {
	ConfirmationModel
	runner *commands.Runner

	entry      domain.Entry
	from       string
	sections   []string
	pager      *Paginator
	input      textinput.Model
	typing     bool
	confirming bool
	dest       string
}

// NewRelocateModel creates a new relocate view model
func NewRelocateModel(runner *commands.Runner) *RelocateModel {
	input := textinput.New()
	input.Placeholder = "New category name"
	input.CharLimit = 80

	return &RelocateModel{
		ConfirmationModel: NewConfirmationModel(),
		runner:            runner,
		pager:             NewPaginator(10),
		input:             input,
	}
}

// SetSource prepares the picker for an entry. The entry's own section is
// not offered as a destination.
func (m *RelocateModel) SetSource(entry domain.Entry, from string, sections []string) {
	m.entry = entry
	m.from = from
	m.sections = m.sections[:0]
	fromKey := domain.NormalizeKey(from)
	seen := map[string]bool{fromKey: true}
	for _, s := range sections {
		k := domain.NormalizeKey(s)
		if seen[k] {
			continue
		}
		seen[k] = true
		m.sections = append(m.sections, s)
	}
	m.pager.Reset()
	m.pager.SetTotal(len(m.sections))
	m.input.SetValue("")
	m.input.Blur()
	m.typing = len(m.sections) == 0
	if m.typing {
		m.input.Focus()
	}
	m.confirming = false
	m.dest = ""
	m.ClearMessage()
}

// Init initializes the relocate view
func (m *RelocateModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the relocate view
func (m *RelocateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case RelocateErrMsg:
		m.confirming = false
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.confirming {
			return m, m.handleConfirmKey(msg)
		}
		return m, m.handlePickerKey(msg)
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *RelocateModel) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		m.confirming = false
	case key.Matches(msg, m.Keys.Confirm):
		return m.relocate(m.entry.DataPath, m.dest)
	}
	return nil
}

func (m *RelocateModel) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, RelocateKeys.Cancel):
		return func() tea.Msg { return SwitchToBrowserMsg{} }

	case key.Matches(msg, RelocateKeys.Toggle):
		m.typing = !m.typing
		if m.typing {
			return m.input.Focus()
		}
		m.input.Blur()
		return nil

	case key.Matches(msg, RelocateKeys.Select):
		dest := m.selection()
		if dest == "" {
			m.SetMessage("destination category is required", true)
			return nil
		}
		m.dest = dest
		m.confirming = true
		m.ClearMessage()
		return nil
	}

	if m.typing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, RelocateKeys.Up):
		m.pager.CursorUp()
	case key.Matches(msg, RelocateKeys.Down):
		m.pager.CursorDown()
	}
	return nil
}

func (m *RelocateModel) selection() string {
	if m.typing {
		return strings.TrimSpace(m.input.Value())
	}
	c := m.pager.Cursor()
	if c < 0 || c >= len(m.sections) {
		return ""
	}
	return m.sections[c]
}

func (m *RelocateModel) relocate(dataPath, dest string) tea.Cmd {
	return func() tea.Msg {
		res, err := commands.NewRelocateCommand(m.runner, dataPath, dest, false).Execute(context.Background())
		if err != nil {
			return RelocateErrMsg{Err: err}
		}
		return CatalogChangedMsg{Message: res.Message}
	}
}

// RelocateErrMsg indicates the relocation was refused or failed
type RelocateErrMsg struct {
	Err error
}

// View renders the relocate view
func (m *RelocateModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Relocate Entry"))
	b.WriteString("\n\n")
	b.WriteString(RenderTargetInfo("Entry", m.entry.Title, styles.EntryPath.Render(m.entry.DataPath)))
	b.WriteString("\n\n")
	b.WriteString(RenderTargetInfo("From", m.from))
	b.WriteString("\n\n")

	if m.confirming {
		b.WriteString(RenderConfirmPrompt(fmt.Sprintf("Move to %q?", m.dest)))
		b.WriteString("\n")
		if msg := m.RenderMessage(); msg != "" {
			b.WriteString("\n" + msg + "\n")
		}
		return styles.App.Render(b.String())
	}

	b.WriteString(styles.InputLabel.Render("Destination:"))
	b.WriteString("\n")
	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		line := "  " + m.sections[i]
		if !m.typing && i == m.pager.Cursor() {
			line = "  " + styles.NodeSelected.Render(m.sections[i])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	field := styles.InputField
	if m.typing {
		field = styles.InputFocused
	}
	b.WriteString(field.Render(m.input.View()))
	b.WriteString("\n\n")

	if msg := m.RenderMessage(); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n\n")
	}

	b.WriteString(renderHelpLine([]helpEntry{
		{"j/k", "choose"},
		{"tab", "new category"},
		{"enter", "select"},
		{"esc", "cancel"},
	}))

	return styles.App.Render(b.String())
}
