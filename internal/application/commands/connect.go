package commands

import (
	"context"
	"fmt"

	"doccat/internal/domain"
)

// ConnectResult contains the renditions linked into the catalog
type ConnectResult struct {
	Linked  []string
	Outcome *Outcome
	Message string
}

// ConnectCommand adds entries for derived renditions next to their
// already catalogued source documents
type ConnectCommand struct {
	runner *Runner
	DryRun bool
}

// NewConnectCommand creates a new ConnectCommand
func NewConnectCommand(runner *Runner, dryRun bool) *ConnectCommand {
	return &ConnectCommand{runner: runner, DryRun: dryRun}
}

// Execute runs the connect command
func (c *ConnectCommand) Execute(ctx context.Context) (*ConnectResult, error) {
	r := c.runner
	res := &ConnectResult{}
	_, err := r.run(ctx, "connect", func(cy *domain.Cycle) error {
		buf, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		candidates, err := r.scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		if err := cy.Advance(domain.StageScanned); err != nil {
			return err
		}
		plan := r.planner().PlanConnect(cat, candidates)
		if err := cy.Advance(domain.StagePlanned); err != nil {
			return err
		}
		if plan.IsEmpty() {
			return nil
		}
		res.Outcome, err = r.apply(ctx, cy, buf, plan, c.DryRun)
		if err != nil {
			return err
		}
		for _, e := range res.Outcome.Report.Applied {
			res.Linked = append(res.Linked, e.Target())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Outcome == nil:
		res.Message = "Nothing to do: every rendition is catalogued"
	case c.DryRun:
		res.Message = fmt.Sprintf("Would link %d rendition(s)", len(res.Linked))
	default:
		res.Message = fmt.Sprintf("Linked %d rendition(s)", len(res.Linked))
	}
	return res, nil
}
