package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"doccat/internal/application/reconcile"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

// maxProposalContent bounds how much of a text file is sent to the proposer
const maxProposalContent = 4096

// SyncResult contains the result of a sync cycle
type SyncResult struct {
	Diff       domain.Diff
	Sync       *reconcile.SyncPlan
	Outcome    *Outcome
	Stage      domain.Stage
	StateReset bool
	StateSaved bool
	Message    string
}

// SyncCommand inserts entries for new documents and deletes entries for
// removed ones, then records fingerprints for what was catalogued
type SyncCommand struct {
	runner  *Runner
	DryRun  bool
	Suggest bool
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(runner *Runner, dryRun, suggest bool) *SyncCommand {
	return &SyncCommand{runner: runner, DryRun: dryRun, Suggest: suggest}
}

// Execute runs the sync command
func (c *SyncCommand) Execute(ctx context.Context) (*SyncResult, error) {
	r := c.runner
	res := &SyncResult{}
	cy, err := r.run(ctx, "sync", func(cy *domain.Cycle) error {
		buf, cat, err := r.readCatalog(ctx)
		if err != nil {
			return err
		}
		records, reset, err := r.loadState(ctx)
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		res.StateReset = reset

		candidates, err := r.scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		if err := cy.Advance(domain.StageScanned); err != nil {
			return err
		}

		res.Diff = domain.ComputeDiff(candidates, records)
		if err := cy.Advance(domain.StageDiffed); err != nil {
			return err
		}

		proposals := c.propose(ctx, cat, res.Diff, candidates)
		res.Sync = r.planner().PlanSync(cat, res.Diff, candidates, proposals)
		if err := cy.Advance(domain.StagePlanned); err != nil {
			return err
		}
		r.logger.Debug().
			Int("new", len(res.Diff.New)).
			Int("removed", len(res.Diff.Removed)).
			Int("edits", len(res.Sync.Plan.Edits)).
			Msg("sync planned")

		res.Outcome, err = r.apply(ctx, cy, buf, res.Sync.Plan, c.DryRun)
		if err != nil {
			return err
		}
		if c.DryRun {
			return nil
		}

		next, dirty := c.nextState(records, reset, res, candidates)
		if !dirty {
			return nil
		}
		if err := r.state.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		res.StateSaved = true
		return nil
	})
	if cy != nil {
		res.Stage = cy.Stage()
	}
	if err != nil {
		return nil, err
	}
	res.Message = c.summary(res)
	return res, nil
}

// nextState records fingerprints only for files whose catalog state is
// settled, so skipped inserts are retried by the next sync
func (c *SyncCommand) nextState(records domain.Fingerprints, reset bool, res *SyncResult, candidates []domain.CandidateFile) (domain.Fingerprints, bool) {
	byPath := make(map[string]domain.CandidateFile, len(candidates))
	for _, cf := range candidates {
		byPath[cf.Path] = cf
	}
	now := c.runner.now().UTC()
	next := records.Clone()
	dirty := reset
	report := res.Outcome.Report

	record := func(path string) {
		if cf, ok := byPath[path]; ok {
			next.Record(cf, now)
			dirty = true
		}
	}
	for path := range res.Sync.Inserted {
		if report.WasApplied(domain.EditInsertEntry, path) {
			record(path)
		}
	}
	for _, path := range res.Sync.Reclassified {
		record(path)
	}
	for _, path := range res.Diff.Changed {
		record(path)
	}
	for _, path := range res.Sync.Deleted {
		if report.WasApplied(domain.EditDeleteEntry, path) {
			delete(next, path)
			dirty = true
		}
	}
	for _, path := range res.Sync.Forgotten {
		delete(next, path)
		dirty = true
	}
	return next, dirty
}

// propose asks the entry proposer about new source documents. Proposer
// failures fall back to the category policy.
func (c *SyncCommand) propose(ctx context.Context, cat *domain.Catalog, diff domain.Diff, candidates []domain.CandidateFile) map[string]ports.EntryProposal {
	r := c.runner
	if !c.Suggest || len(diff.New) == 0 {
		return nil
	}
	if r.proposer == nil || !r.proposer.IsAvailable() {
		r.logger.Warn().Msg("entry proposer not available, using category rules")
		return nil
	}

	isNew := make(map[string]bool, len(diff.New))
	for _, p := range diff.New {
		isNew[p] = true
	}
	live := cat.DataPaths()
	var files []ports.FileInfo
	for _, cf := range candidates {
		if !isNew[cf.Path] || live[cf.Path] || cf.Derived {
			continue
		}
		files = append(files, ports.FileInfo{Path: cf.Path, Name: cf.Name(), Content: readExcerpt(cf)})
	}
	if len(files) == 0 {
		return nil
	}

	proposals, err := r.proposer.ProposeEntries(ctx, files, cat.SectionNames())
	if err != nil {
		r.logger.Warn().Err(err).Msg("entry proposer failed, using category rules")
		return nil
	}
	out := make(map[string]ports.EntryProposal, len(proposals))
	for _, p := range proposals {
		out[p.Path] = p
	}
	return out
}

// readExcerpt returns the head of text documents; binary documents are
// proposed by name only
func readExcerpt(cf domain.CandidateFile) string {
	switch strings.ToLower(cf.Ext) {
	case ".md", ".txt", ".csv", ".html", ".htm", ".json", ".yaml", ".yml":
	default:
		return ""
	}
	f, err := os.Open(cf.AbsPath)
	if err != nil {
		return ""
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxProposalContent))
	if err != nil {
		return ""
	}
	return string(data)
}

func (c *SyncCommand) summary(res *SyncResult) string {
	if res.Sync.Plan.IsEmpty() {
		if n := len(res.Sync.Plan.Conflicts); n > 0 {
			return fmt.Sprintf("Nothing to do; %d conflict(s)", n)
		}
		return "Nothing to do: catalog is up to date"
	}
	applied := res.Outcome.Report.Applied
	verb := "Applied"
	if c.DryRun {
		verb = "Would apply"
	}
	msg := fmt.Sprintf("%s %d insert(s), %d delete(s), %d new category(ies); %d skipped",
		verb,
		countKind(applied, domain.EditInsertEntry),
		countKind(applied, domain.EditDeleteEntry),
		countKind(applied, domain.EditCreateCategory),
		len(res.Outcome.Skipped()))
	if n := len(res.Outcome.PlanConflicts()); n > 0 {
		msg += fmt.Sprintf("; %d conflict(s)", n)
	}
	return msg
}
