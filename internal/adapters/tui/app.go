package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/tui/views"
	"doccat/internal/application/commands"
	"doccat/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewRelocate
	ViewMerge
	ViewHelp
)

// App is the main TUI application model
type App struct {
	editor ports.EditorOpener

	state    ViewState
	browser  *views.BrowserModel
	relocate *views.RelocateModel
	merge    *views.MergeModel
	help     *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. ed may be nil, which disables
// editing.
func NewApp(runner *commands.Runner, opener ports.DocumentOpener, ed ports.EditorOpener, docRoot string) *App {
	return &App{
		editor:   ed,
		state:    ViewBrowser,
		browser:  views.NewBrowserModel(runner, opener, docRoot),
		relocate: views.NewRelocateModel(runner),
		merge:    views.NewMergeModel(runner),
		help:     views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.relocate.SetSize(msg.Width, msg.Height)
		a.merge.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToRelocateMsg:
		a.state = ViewRelocate
		a.relocate.SetSource(msg.Entry, msg.From, msg.Sections)
		return a, a.relocate.Init()

	case views.SwitchToMergeMsg:
		a.state = ViewMerge
		return a, a.merge.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	case views.CatalogChangedMsg:
		a.state = ViewBrowser
		a.browser.SetMessage(msg.Message, false)
		return a, a.browser.Reload()

	case views.OpenEditorMsg:
		a.state = ViewBrowser
		return a, a.openEditor(msg.Path)

	case editorFinishedMsg:
		if msg.err != nil {
			a.browser.SetMessage(msg.err.Error(), true)
		}
		return a, a.browser.Reload()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewRelocate:
		_, cmd = a.relocate.Update(msg)
	case ViewMerge:
		_, cmd = a.merge.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewRelocate:
		return a.relocate.View()
	case ViewMerge:
		return a.merge.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
