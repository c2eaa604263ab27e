package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doccat/internal/application"
	"doccat/internal/domain"
)

// RelocateResult contains the result of moving an entry
type RelocateResult struct {
	DataPath    string
	From        string
	Destination string
	Created     bool
	Outcome     *Outcome
	Message     string
}

// RelocateCommand moves one entry into another category, creating the
// category if needed, and rewrites its tags
type RelocateCommand struct {
	runner      *Runner
	DataPath    string
	Destination string
	DryRun      bool
}

// NewRelocateCommand creates a new RelocateCommand
func NewRelocateCommand(runner *Runner, dataPath, destination string, dryRun bool) *RelocateCommand {
	return &RelocateCommand{
		runner:      runner,
		DataPath:    dataPath,
		Destination: destination,
		DryRun:      dryRun,
	}
}

// Validate checks if the relocation request is well formed
func (c *RelocateCommand) Validate() error {
	if err := application.ValidateDataPath("dataPath", c.DataPath); err != nil {
		return err
	}
	return application.ValidateRequired("destination", c.Destination)
}

// Execute runs the relocate command. Planning conflicts and skipped edits
// are returned as errors and nothing is written.
func (c *RelocateCommand) Execute(ctx context.Context) (*RelocateResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := c.runner
	res := &RelocateResult{DataPath: c.DataPath, Destination: strings.TrimSpace(c.Destination)}
	_, err := r.run(ctx, "relocate", func(cy *domain.Cycle) error {
		buf, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		plan, err := r.planner().PlanRelocate(cat, c.DataPath, c.Destination)
		if err != nil {
			return c.refuse(err)
		}
		for _, e := range plan.Edits {
			switch e := e.(type) {
			case domain.RelocateEntry:
				res.From, res.Destination = e.From, e.To
			case domain.CreateCategory:
				res.Created = true
			}
		}
		if err := cy.Advance(domain.StagePlanned); err != nil {
			return err
		}

		out, err := r.preview(cy, buf, plan)
		if err != nil {
			return err
		}
		out.DryRun = c.DryRun
		res.Outcome = out
		// a skipped create or move must not leave half a relocation on disk
		if skipped := out.Report.Skipped; len(skipped) > 0 {
			return c.refuse(skipped[0])
		}
		if c.DryRun {
			return nil
		}
		return r.commit(ctx, cy, out)
	})
	if err != nil {
		return nil, err
	}

	verb := "Moved"
	if c.DryRun {
		verb = "Would move"
	}
	res.Message = fmt.Sprintf("%s %s from %q to %q", verb, res.DataPath, res.From, res.Destination)
	if res.Created {
		res.Message += " (new category)"
	}
	return res, nil
}

// refuse wraps an edit conflict so callers can tell a refused relocation
// from an I/O failure
func (c *RelocateCommand) refuse(err error) error {
	var conflict *domain.EditConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	return &application.RelocateError{
		Key:    c.DataPath,
		Dest:   strings.TrimSpace(c.Destination),
		Reason: conflict.Reason,
		Err:    conflict,
	}
}
