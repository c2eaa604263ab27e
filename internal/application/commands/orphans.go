package commands

import (
	"context"
	"fmt"

	"doccat/internal/domain"
)

// OrphansResult lists fingerprint records without a live catalog entry
type OrphansResult struct {
	Orphans []string
	Pruned  bool
	Message string
}

// OrphansCommand reports, and optionally prunes, orphaned fingerprint
// records. The catalog is never modified.
type OrphansCommand struct {
	runner *Runner
	Prune  bool
	DryRun bool
}

// NewOrphansCommand creates a new OrphansCommand
func NewOrphansCommand(runner *Runner, prune, dryRun bool) *OrphansCommand {
	return &OrphansCommand{runner: runner, Prune: prune, DryRun: dryRun}
}

// Execute runs the orphans command
func (c *OrphansCommand) Execute(ctx context.Context) (*OrphansResult, error) {
	r := c.runner
	res := &OrphansResult{}
	_, err := r.run(ctx, "orphans", func(cy *domain.Cycle) error {
		_, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		records, reset, err := r.loadState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		res.Orphans = r.planner().PlanOrphans(cat, records)
		if err := cy.Advance(domain.StagePlanned); err != nil {
			return err
		}
		if !c.Prune || c.DryRun || len(res.Orphans) == 0 {
			return nil
		}
		if reset {
			r.logger.Warn().Str("state", r.state.Location()).Msg("not pruning unreadable state")
			return nil
		}

		next := records.Clone()
		for _, path := range res.Orphans {
			delete(next, path)
		}
		if err := r.state.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		res.Pruned = true
		r.logger.Info().Int("pruned", len(res.Orphans)).Msg("orphaned records pruned")
		return cy.Advance(domain.StageCommitted)
	})
	if err != nil {
		return nil, err
	}

	switch {
	case len(res.Orphans) == 0:
		res.Message = "No orphaned records"
	case res.Pruned:
		res.Message = fmt.Sprintf("Pruned %d orphaned record(s)", len(res.Orphans))
	case c.Prune:
		res.Message = fmt.Sprintf("Would prune %d orphaned record(s)", len(res.Orphans))
	default:
		res.Message = fmt.Sprintf("%d orphaned record(s)", len(res.Orphans))
	}
	return res, nil
}
