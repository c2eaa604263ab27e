package commands

import (
	"context"
	"fmt"

	"doccat/internal/application"
	"doccat/internal/catalog"
)

// InitResult contains the result of creating a catalog
type InitResult struct {
	Path    string
	Message string
}

// InitCommand creates an empty catalog from the built-in template
type InitCommand struct {
	runner *Runner
	Title  string
}

// NewInitCommand creates a new InitCommand
func NewInitCommand(runner *Runner, title string) *InitCommand {
	return &InitCommand{runner: runner, Title: title}
}

// Validate checks if the init request is well formed
func (c *InitCommand) Validate() error {
	return application.ValidateRequired("title", c.Title)
}

// Execute runs the init command
func (c *InitCommand) Execute(ctx context.Context) (*InitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	store := c.runner.catalog
	if store.Exists() {
		return nil, fmt.Errorf("%w: %s", application.ErrCatalogExists, store.Path())
	}
	if err := store.Create(ctx, catalog.Template(c.Title)); err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}
	return &InitResult{
		Path:    store.Path(),
		Message: fmt.Sprintf("Created %s", store.Path()),
	}, nil
}
