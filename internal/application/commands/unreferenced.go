package commands

import (
	"context"
	"fmt"

	"doccat/internal/application/reconcile"
	"doccat/internal/domain"
)

// ListUnreferencedResult contains the documents the catalog never mentions
type ListUnreferencedResult struct {
	Files   []domain.CandidateFile
	Scanned int
	Message string
}

// ListUnreferencedCommand reports documents on disk that no entry refers
// to, either as data path or as companion link
type ListUnreferencedCommand struct {
	runner *Runner
}

// NewListUnreferencedCommand creates a new ListUnreferencedCommand
func NewListUnreferencedCommand(runner *Runner) *ListUnreferencedCommand {
	return &ListUnreferencedCommand{runner: runner}
}

// Execute runs the list-unreferenced command
func (c *ListUnreferencedCommand) Execute(ctx context.Context) (*ListUnreferencedResult, error) {
	r := c.runner
	res := &ListUnreferencedResult{}
	_, err := r.run(ctx, "list-unreferenced", func(cy *domain.Cycle) error {
		_, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		candidates, err := r.scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		res.Scanned = len(candidates)
		if err := cy.Advance(domain.StageScanned); err != nil {
			return err
		}
		res.Files = reconcile.Unreferenced(cat, candidates)
		return cy.Advance(domain.StageDiffed)
	})
	if err != nil {
		return nil, err
	}
	if len(res.Files) == 0 {
		res.Message = fmt.Sprintf("All %d document(s) are referenced", res.Scanned)
	} else {
		res.Message = fmt.Sprintf("%d of %d document(s) are not referenced", len(res.Files), res.Scanned)
	}
	return res, nil
}
