package commands

import (
	"context"
	"fmt"

	"doccat/internal/domain"
)

// ListResult contains the parsed catalog
type ListResult struct {
	Catalog    *domain.Catalog
	Duplicates []string
	Message    string
}

// ListCommand reads the catalog. It does not start a cycle, so views may
// reload while a cycle is running.
type ListCommand struct {
	runner *Runner
}

// NewListCommand creates a new ListCommand
func NewListCommand(runner *Runner) *ListCommand {
	return &ListCommand{runner: runner}
}

// Execute runs the list command
func (c *ListCommand) Execute(ctx context.Context) (*ListResult, error) {
	_, cat, err := c.runner.readCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Catalog:    cat,
		Duplicates: cat.DuplicateKeys(),
		Message:    fmt.Sprintf("%d section(s), %d entr(ies)", len(cat.Sections), cat.EntryCount()),
	}, nil
}
