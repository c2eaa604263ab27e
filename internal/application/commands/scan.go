package commands

import (
	"context"
	"fmt"

	"doccat/internal/domain"
)

// ScanResult contains the diff between disk and the fingerprint store
type ScanResult struct {
	Candidates []domain.CandidateFile
	Diff       domain.Diff
	StateReset bool
	Message    string
}

// ScanCommand scans the document root and diffs it against stored
// fingerprints without writing anything
type ScanCommand struct {
	runner *Runner
}

// NewScanCommand creates a new ScanCommand
func NewScanCommand(runner *Runner) *ScanCommand {
	return &ScanCommand{runner: runner}
}

// Execute runs the scan command
func (c *ScanCommand) Execute(ctx context.Context) (*ScanResult, error) {
	res := &ScanResult{}
	_, err := c.runner.run(ctx, "scan", func(cy *domain.Cycle) error {
		records, reset, err := c.runner.loadState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		res.StateReset = reset

		candidates, err := c.runner.scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		res.Candidates = candidates
		if err := cy.Advance(domain.StageScanned); err != nil {
			return err
		}

		res.Diff = domain.ComputeDiff(candidates, records)
		return cy.Advance(domain.StageDiffed)
	})
	if err != nil {
		return nil, err
	}
	res.Message = diffSummary(res.Diff)
	return res, nil
}

func diffSummary(d domain.Diff) string {
	return fmt.Sprintf("%d new, %d changed, %d removed, %d unchanged",
		len(d.New), len(d.Changed), len(d.Removed), len(d.Unchanged))
}
