package views

import (
	"fmt"
	"strings"

	"doccat/internal/adapters/tui/styles"
	"doccat/internal/domain"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// RenderMessage renders the current message, or nothing
func (s *ViewState) RenderMessage() string {
	if s.Message == "" {
		return ""
	}
	if s.MessageErr {
		return styles.ErrorMsg.Render(s.Message)
	}
	return styles.Success.Render(s.Message)
}

type helpEntry struct {
	key  string
	desc string
}

func renderHelpLine(keys []helpEntry) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(k.key),
			styles.HelpDesc.Render(k.desc),
		))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// conflictLines renders diagnostics under a label, one per line
func conflictLines(label string, conflicts []*domain.EditConflictError) string {
	var b strings.Builder
	for _, c := range conflicts {
		b.WriteString(styles.WarningMsg.Render(fmt.Sprintf("%s %s: %s", label, c.Key, c.Reason)))
		b.WriteString("\n")
	}
	return b.String()
}

// Messages for view switching
type SwitchToRelocateMsg struct {
	Entry    domain.Entry
	From     string
	Sections []string
}

type SwitchToMergeMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}

// OpenEditorMsg asks the app to suspend and open Path in $EDITOR
type OpenEditorMsg struct {
	Path string
}

// CatalogChangedMsg reports a committed change; the browser reloads
type CatalogChangedMsg struct {
	Message string
}
