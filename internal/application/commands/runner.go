// Package commands implements the catalog operations. Every command that
// may write runs as one cycle of the runner; only one cycle runs at a time.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"doccat/internal/application"
	"doccat/internal/application/reconcile"
	"doccat/internal/catalog"
	"doccat/internal/domain"
	"doccat/internal/ports"
)

// Runner holds the collaborators of a synchronization cycle and makes sure
// only one cycle runs at a time
type Runner struct {
	catalog  ports.CatalogStore
	state    ports.FingerprintStore
	scanner  ports.Scanner
	policy   ports.CategoryPolicy
	proposer ports.EntryProposer
	logger   zerolog.Logger
	now      func() time.Time
	running  atomic.Bool
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithPolicy sets the category policy used for new entries
func WithPolicy(p ports.CategoryPolicy) RunnerOption {
	return func(r *Runner) { r.policy = p }
}

// WithProposer sets the optional entry proposer used by sync --suggest
func WithProposer(p ports.EntryProposer) RunnerOption {
	return func(r *Runner) { r.proposer = p }
}

// WithLogger sets the runner logger
func WithLogger(l zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithClock overrides the time source for fingerprint timestamps
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner
func NewRunner(cat ports.CatalogStore, state ports.FingerprintStore, scanner ports.Scanner, opts ...RunnerOption) *Runner {
	r := &Runner{
		catalog: cat,
		state:   state,
		scanner: scanner,
		policy:  reconcile.NewLexicalPolicy(),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog store
func (r *Runner) Catalog() ports.CatalogStore { return r.catalog }

// State returns the fingerprint store
func (r *Runner) State() ports.FingerprintStore { return r.state }

// Logger returns the runner logger
func (r *Runner) Logger() zerolog.Logger { return r.logger }

func (r *Runner) planner() *reconcile.Planner {
	return reconcile.NewPlanner(r.policy, r.logger)
}

// run executes fn as one cycle. A second cycle started while one is running
// fails with ErrReentrantCycle.
func (r *Runner) run(ctx context.Context, name string, fn func(c *domain.Cycle) error) (*domain.Cycle, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, application.ErrReentrantCycle
	}
	defer r.running.Store(false)

	c := domain.NewCycle(name)
	log := r.logger.With().Str("cycle", name).Logger()
	log.Debug().Msg("cycle started")

	if err := ctx.Err(); err != nil {
		c.Abort()
		return c, err
	}
	if err := fn(c); err != nil {
		c.Abort()
		log.Warn().Err(err).Str("stage", c.Stage().String()).Msg("cycle aborted")
		return c, err
	}
	log.Info().Str("stage", c.Stage().String()).Msg("cycle finished")
	return c, nil
}

// readCatalog loads and parses the catalog buffer
func (r *Runner) readCatalog(ctx context.Context) (string, *domain.Catalog, error) {
	if !r.catalog.Exists() {
		return "", nil, fmt.Errorf("%w: %s", application.ErrCatalogMissing, r.catalog.Path())
	}
	buf, err := r.catalog.Read(ctx)
	if err != nil {
		return "", nil, err
	}
	cat, err := catalog.Parse(buf)
	if err != nil {
		return "", nil, err
	}
	return buf, cat, nil
}

// loadState reads fingerprints. Corrupt state is treated as empty and
// reported through reset so the caller can warn.
func (r *Runner) loadState(ctx context.Context) (records domain.Fingerprints, reset bool, err error) {
	records, err = r.state.Load(ctx)
	if errors.Is(err, domain.ErrCorruptState) {
		r.logger.Warn().Err(err).Str("state", r.state.Location()).Msg("fingerprint state unreadable, starting empty")
		return domain.Fingerprints{}, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return records, false, nil
}

// Outcome describes the result of applying a plan to the catalog
type Outcome struct {
	Plan      *domain.EditPlan
	Report    *domain.ApplyReport
	Preview   string
	Backup    string
	DryRun    bool
	Committed bool

	original string
}

// Conflicts returns planning conflicts followed by edits the editor skipped
func (o *Outcome) Conflicts() []*domain.EditConflictError {
	var out []*domain.EditConflictError
	out = append(out, o.PlanConflicts()...)
	return append(out, o.Skipped()...)
}

// PlanConflicts returns the diagnostics raised while planning
func (o *Outcome) PlanConflicts() []*domain.EditConflictError {
	if o == nil || o.Plan == nil {
		return nil
	}
	return o.Plan.Conflicts
}

// Skipped returns the edits the editor refused
func (o *Outcome) Skipped() []*domain.EditConflictError {
	if o == nil || o.Report == nil {
		return nil
	}
	return o.Report.Skipped
}

// Applied returns the number of edits the editor applied
func (o *Outcome) Applied() int {
	if o == nil || o.Report == nil {
		return 0
	}
	return len(o.Report.Applied)
}

// apply runs the editor over buf and commits the result unless dryRun is
// set
func (r *Runner) apply(ctx context.Context, c *domain.Cycle, buf string, plan *domain.EditPlan, dryRun bool) (*Outcome, error) {
	out, err := r.preview(c, buf, plan)
	if err != nil {
		return nil, err
	}
	out.DryRun = dryRun
	if dryRun {
		return out, nil
	}
	return out, r.commit(ctx, c, out)
}

// preview runs the editor without touching disk
func (r *Runner) preview(c *domain.Cycle, buf string, plan *domain.EditPlan) (*Outcome, error) {
	next, report, err := catalog.Apply(buf, plan)
	if err != nil {
		return nil, err
	}
	if err := c.Advance(domain.StageApplied); err != nil {
		return nil, err
	}
	for _, skipped := range report.Skipped {
		r.logger.Warn().Str("key", skipped.Key).Str("edit", skipped.Edit).Msg(skipped.Reason)
	}
	return &Outcome{Plan: plan, Report: report, Preview: next, original: buf}, nil
}

// commit writes a previewed buffer. An unchanged buffer is not written.
func (r *Runner) commit(ctx context.Context, c *domain.Cycle, out *Outcome) error {
	if out.Preview == out.original {
		return nil
	}
	backup, err := r.catalog.Commit(ctx, out.Preview)
	if err != nil {
		return err
	}
	out.Backup, out.Committed = backup, true
	r.logger.Info().
		Str("catalog", r.catalog.Path()).
		Str("backup", backup).
		Int("applied", len(out.Report.Applied)).
		Msg("catalog committed")
	return c.Advance(domain.StageCommitted)
}

func countKind(edits []domain.Edit, kind domain.EditKind) int {
	n := 0
	for _, e := range edits {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}
