package views

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/tui/styles"
	"doccat/internal/application/commands"
)

// MergeModel previews the duplicate-category merge and commits it after
// confirmation
type MergeModel struct {
	ConfirmationModel
	runner  *commands.Runner
	preview *commands.MergeResult
	loading bool
}

// NewMergeModel creates a new merge view model
func NewMergeModel(runner *commands.Runner) *MergeModel {
	return &MergeModel{
		ConfirmationModel: NewConfirmationModel(),
		runner:            runner,
	}
}

// Init computes the preview with a dry run
func (m *MergeModel) Init() tea.Cmd {
	m.preview = nil
	m.loading = true
	m.ClearMessage()
	return func() tea.Msg {
		res, err := commands.NewMergeCommand(m.runner, true).Execute(context.Background())
		if err != nil {
			return mergePreviewMsg{err: err}
		}
		return mergePreviewMsg{result: res}
	}
}

type mergePreviewMsg struct {
	result *commands.MergeResult
	err    error
}

// MergeErrMsg indicates the merge failed
type MergeErrMsg struct {
	Err error
}

// Update handles messages for the merge view
func (m *MergeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case mergePreviewMsg:
		m.loading = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.preview = msg.result
		return m, nil

	case MergeErrMsg:
		m.SetMessage(msg.Err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		if !m.hasWork() {
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		}
		_, cmd := m.HandleKeyMsg(msg, m.merge, func() tea.Msg { return SwitchToBrowserMsg{} })
		return m, cmd
	}
	return m, nil
}

func (m *MergeModel) hasWork() bool {
	return m.preview != nil && len(m.preview.Merged) > 0
}

func (m *MergeModel) merge() tea.Msg {
	res, err := commands.NewMergeCommand(m.runner, false).Execute(context.Background())
	if err != nil {
		return MergeErrMsg{Err: err}
	}
	return CatalogChangedMsg{Message: res.Message}
}

// View renders the merge view
func (m *MergeModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Merge Duplicate Categories"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("Planning...")
	case m.preview == nil:
		b.WriteString(m.RenderMessage())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpDesc.Render("Press any key to return"))
	case !m.hasWork():
		b.WriteString(m.preview.Message)
		b.WriteString("\n\n")
		b.WriteString(styles.HelpDesc.Render("Press any key to return"))
	default:
		b.WriteString(RenderTargetInfo("Surviving sections", m.preview.Merged...))
		b.WriteString("\n\n")
		b.WriteString(conflictLines("conflict", m.preview.Outcome.PlanConflicts()))
		b.WriteString(conflictLines("skipped", m.preview.Outcome.Skipped()))
		if msg := m.RenderMessage(); msg != "" {
			b.WriteString(msg)
			b.WriteString("\n\n")
		}
		b.WriteString(RenderConfirmPrompt("Merge these categories?"))
	}

	return styles.App.Render(b.String())
}
