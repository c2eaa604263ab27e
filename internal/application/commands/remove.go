package commands

import (
	"context"
	"fmt"
	"regexp"

	"doccat/internal/application"
	"doccat/internal/domain"
)

// RemoveResult contains the entries deleted by pattern
type RemoveResult struct {
	Removed []string
	Outcome *Outcome
	Message string
}

// RemoveCommand deletes every entry whose data path or companion link
// matches one of the patterns
type RemoveCommand struct {
	runner   *Runner
	Patterns []string
	DryRun   bool

	compiled []*regexp.Regexp
}

// NewRemoveCommand creates a new RemoveCommand
func NewRemoveCommand(runner *Runner, patterns []string, dryRun bool) *RemoveCommand {
	return &RemoveCommand{runner: runner, Patterns: patterns, DryRun: dryRun}
}

// Validate compiles the patterns
func (c *RemoveCommand) Validate() error {
	compiled, err := application.CompilePatterns("pattern", c.Patterns)
	if err != nil {
		return err
	}
	c.compiled = compiled
	return nil
}

// Execute runs the remove command
func (c *RemoveCommand) Execute(ctx context.Context) (*RemoveResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := c.runner
	res := &RemoveResult{}
	_, err := r.run(ctx, "remove", func(cy *domain.Cycle) error {
		buf, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		plan := r.planner().PlanRemove(cat, c.compiled)
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
			res.Removed = append(res.Removed, e.Target())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case res.Outcome == nil:
		res.Message = "Nothing to do: no entry matches"
	case c.DryRun:
		res.Message = fmt.Sprintf("Would remove %d entr(ies)", len(res.Removed))
	default:
		res.Message = fmt.Sprintf("Removed %d entr(ies)", len(res.Removed))
	}
	return res, nil
}
