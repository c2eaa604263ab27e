package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"doccat/internal/adapters/editor"
	"doccat/internal/adapters/tui"
	"doccat/internal/bootstrap"
)

func main() {
	// The alternate screen owns the terminal; logs go to --log-file only
	app, logCloser, err := bootstrap.Start("doccat", os.Args[1:], io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	defer app.Close()

	model := tui.NewApp(app.Runner, app.Opener, editor.NewOpener(), app.DocRoot())
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
