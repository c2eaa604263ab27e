package commands

import (
	"context"
	"fmt"
	"strings"

	"doccat/internal/domain"
)

// MergeResult contains the result of merging duplicate categories
type MergeResult struct {
	Merged  []string
	Outcome *Outcome
	Message string
}

// MergeCommand folds sections sharing a normalized name into the first one
type MergeCommand struct {
	runner *Runner
	DryRun bool
}

// NewMergeCommand creates a new MergeCommand
func NewMergeCommand(runner *Runner, dryRun bool) *MergeCommand {
	return &MergeCommand{runner: runner, DryRun: dryRun}
}

// Execute runs the merge command
func (c *MergeCommand) Execute(ctx context.Context) (*MergeResult, error) {
	r := c.runner
	res := &MergeResult{}
	_, err := r.run(ctx, "merge", func(cy *domain.Cycle) error {
		buf, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		plan := r.planner().PlanMerge(cat)
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
			res.Merged = append(res.Merged, e.Target())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Outcome == nil:
		res.Message = "Nothing to do: no duplicate categories"
	case c.DryRun:
		res.Message = fmt.Sprintf("Would merge %d category group(s): %s", len(res.Merged), strings.Join(res.Merged, ", "))
	default:
		res.Message = fmt.Sprintf("Merged %d category group(s): %s", len(res.Merged), strings.Join(res.Merged, ", "))
	}
	return res, nil
}
