// Package reconcile turns scan results and catalog state into edit plans.
// Planners never touch the catalog buffer; the catalog editor is the only
// writer.
package reconcile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"doccat/internal/domain"
	"doccat/internal/ports"
)

// Planner builds edit plans
type Planner struct {
	policy ports.CategoryPolicy
	logger zerolog.Logger
}

// NewPlanner creates a planner. A nil policy falls back to the lexical one.
func NewPlanner(policy ports.CategoryPolicy, logger zerolog.Logger) *Planner {
	if policy == nil {
		policy = NewLexicalPolicy()
	}
	return &Planner{policy: policy, logger: logger}
}

// SyncPlan is the outcome of planning a sync together with the bookkeeping
// needed to update fingerprints after the commit
type SyncPlan struct {
	Plan *domain.EditPlan
	// Inserted maps a new data path to the category it is filed under
	Inserted map[string]string
	// Reclassified lists new paths that already have a catalog entry
	Reclassified []string
	// Deleted lists removed paths with a planned entry deletion
	Deleted []string
	// Forgotten lists removed paths that had no entry
	Forgotten []string
}

// PlanSync plans insertions for new files and deletions for removed ones.
// Sources are planned before derived renditions so a rendition can follow
// its source into the same section.
func (p *Planner) PlanSync(cat *domain.Catalog, diff domain.Diff, candidates []domain.CandidateFile, proposals map[string]ports.EntryProposal) *SyncPlan {
	out := &SyncPlan{Plan: &domain.EditPlan{}, Inserted: make(map[string]string)}
	byPath := make(map[string]domain.CandidateFile, len(candidates))
	for _, c := range candidates {
		byPath[c.Path] = c
	}
	live := cat.DataPaths()
	companions := Companions(candidates)
	sections := cat.SectionNames()
	created := make(map[string]string)
	titles := make(map[string]string)

	flagDuplicateKeys(out.Plan, cat, "sync")

	var sources, derived []domain.CandidateFile
	for _, path := range diff.New {
		c, ok := byPath[path]
		if !ok {
			continue
		}
		if live[path] {
			out.Reclassified = append(out.Reclassified, path)
			continue
		}
		if c.Derived {
			derived = append(derived, c)
		} else {
			sources = append(sources, c)
		}
	}

	ensure := func(category string) string {
		key := domain.NormalizeKey(category)
		if s, ok := cat.FindSection(category); ok {
			return s.Name
		}
		if name, ok := created[key]; ok {
			return name
		}
		name := strings.TrimSpace(category)
		created[key] = name
		sections = append(sections, name)
		out.Plan.Add(domain.CreateCategory{Name: name})
		return name
	}

	for _, c := range sources {
		prop := proposals[c.Path]
		category := prop.Category
		if strings.TrimSpace(category) == "" {
			category = p.suggest(out.Plan, c, sections)
		}
		category = ensure(category)
		link := c.Path
		if d, ok := companions[c.Path]; ok {
			link = d
		}
		title := firstNonEmpty(prop.Title, c.Stem())
		titles[c.Path] = title
		out.Plan.Add(domain.InsertEntry{Category: category, Entry: newEntry(c, category, title, prop.Description, link)})
		out.Inserted[c.Path] = category
		p.logger.Debug().Str("path", c.Path).Str("category", category).Msg("planned insert")
	}

	for _, c := range derived {
		prop := proposals[c.Path]
		src, hasSrc := companions[c.Path]
		if !hasSrc {
			src, hasSrc = catalogedSource(c, cat)
		}
		var category, title string
		switch {
		case hasSrc && out.Inserted[src] != "":
			category, title = out.Inserted[src], titles[src]
		case hasSrc && live[src]:
			ref := cat.Lookup(src)[0]
			category = cat.Sections[ref.Section].Name
			title = cat.Entry(ref).Title
		default:
			category = prop.Category
			if strings.TrimSpace(category) == "" {
				category = p.suggest(out.Plan, c, sections)
			}
			category = ensure(category)
		}
		title = firstNonEmpty(prop.Title, title, c.Stem())
		link := c.Path
		if hasSrc {
			link = src
		}
		out.Plan.Add(domain.InsertEntry{Category: category, Entry: newEntry(c, category, title, prop.Description, link)})
		out.Inserted[c.Path] = category
		p.logger.Debug().Str("path", c.Path).Str("category", category).Str("source", src).Msg("planned rendition insert")
	}

	for _, path := range diff.Removed {
		if live[path] {
			out.Plan.Add(domain.DeleteEntry{Key: path})
			out.Deleted = append(out.Deleted, path)
			continue
		}
		out.Forgotten = append(out.Forgotten, path)
	}
	return out
}

// PlanMerge plans one merge per group of sections sharing a normalized
// name. The first section in document order survives.
func (p *Planner) PlanMerge(cat *domain.Catalog) *domain.EditPlan {
	plan := &domain.EditPlan{}
	seen := make(map[string]bool)
	for _, s := range cat.Sections {
		if s.Key == "" || seen[s.Key] {
			continue
		}
		seen[s.Key] = true
		idx := cat.SectionsByKey(s.Key)
		if len(idx) < 2 {
			continue
		}
		merge := domain.MergeCategory{Name: s.Name, Survivor: cat.Sections[idx[0]]}
		for _, i := range idx[1:] {
			merge.Absorbed = append(merge.Absorbed, cat.Sections[i])
		}
		plan.Add(merge)
	}
	if !plan.IsEmpty() {
		flagDuplicateKeys(plan, cat, "merge")
	}
	return plan
}

// PlanRelocate plans moving one entry into dest, creating the section when
// it does not exist
func (p *Planner) PlanRelocate(cat *domain.Catalog, key, dest string) (*domain.EditPlan, error) {
	dest = strings.TrimSpace(dest)
	refs := cat.Lookup(key)
	switch len(refs) {
	case 0:
		return nil, &domain.EditConflictError{Key: key, Edit: "relocate", Reason: "entry not found"}
	case 1:
	default:
		return nil, &domain.EditConflictError{Key: key, Edit: "relocate", Reason: fmt.Sprintf("entry appears %d times", len(refs))}
	}
	from := cat.Sections[refs[0].Section]
	if from.Key == domain.NormalizeKey(dest) {
		return nil, &domain.EditConflictError{Key: key, Edit: "relocate", Reason: "entry already in destination category"}
	}

	plan := &domain.EditPlan{}
	if s, ok := cat.FindSection(dest); ok {
		dest = s.Name
	} else {
		plan.Add(domain.CreateCategory{Name: dest})
	}
	plan.Add(domain.RelocateEntry{Key: key, From: from.Name, To: dest})
	return plan, nil
}

// PlanOrphans returns the fingerprint paths without a live catalog entry
func (p *Planner) PlanOrphans(cat *domain.Catalog, records domain.Fingerprints) []string {
	live := cat.DataPaths()
	var orphans []string
	for _, path := range records.Paths() {
		if !live[path] {
			orphans = append(orphans, path)
		}
	}
	return orphans
}

// PlanConnect plans entries for derived renditions whose source is
// catalogued but which have no entry of their own
func (p *Planner) PlanConnect(cat *domain.Catalog, candidates []domain.CandidateFile) *domain.EditPlan {
	plan := &domain.EditPlan{}
	keys := cat.DataPaths()
	companions := Companions(candidates)
	for _, c := range candidates {
		if !c.Derived || keys[c.Path] {
			continue
		}
		src, ok := companions[c.Path]
		if !ok || !keys[src] {
			src, ok = catalogedSource(c, cat)
		}
		if !ok {
			continue
		}
		refs := cat.Lookup(src)
		if len(refs) == 0 {
			continue
		}
		e := cat.Entry(refs[0])
		section := cat.Sections[refs[0].Section].Name
		plan.Add(domain.InsertEntry{Category: section, Entry: newEntry(c, section, firstNonEmpty(e.Title, c.Stem()), "", src)})
		p.logger.Debug().Str("path", c.Path).Str("source", src).Msg("planned rendition link")
	}
	return plan
}

// PlanRemove plans deleting every entry whose data path or derived link
// matches one of the patterns
func (p *Planner) PlanRemove(cat *domain.Catalog, patterns []*regexp.Regexp) *domain.EditPlan {
	plan := &domain.EditPlan{}
	seen := make(map[string]bool)
	for _, s := range cat.Sections {
		for _, e := range s.Entries {
			if e.DataPath == "" || seen[e.DataPath] {
				continue
			}
			if matchAny(patterns, e.DataPath) || (e.DerivedLink != "" && matchAny(patterns, e.DerivedLink)) {
				seen[e.DataPath] = true
				plan.Add(domain.DeleteEntry{Key: e.DataPath})
			}
		}
	}
	return plan
}

// Unreferenced returns the candidates no entry mentions, either as data
// path or as derived link
func Unreferenced(cat *domain.Catalog, candidates []domain.CandidateFile) []domain.CandidateFile {
	refs := cat.Referenced()
	var out []domain.CandidateFile
	for _, c := range candidates {
		if !refs[c.Path] {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// suggest asks the policy for a category and records a conflict when the
// policy reports a tie
func (p *Planner) suggest(plan *domain.EditPlan, c domain.CandidateFile, sections []string) string {
	category := p.policy.Suggest(c, sections)
	reporter, ok := p.policy.(ports.AmbiguityReporter)
	if !ok {
		return category
	}
	if ties := reporter.Ties(c, sections); len(ties) > 1 {
		plan.Conflict(c.Path, "sync", fmt.Sprintf("ambiguous category match: %s; filed under %q", strings.Join(ties, ", "), category))
		p.logger.Warn().Str("path", c.Path).Strs("candidates", ties).Str("category", category).Msg("ambiguous category match")
	}
	return category
}

// flagDuplicateKeys records a conflict for every data path that appears in
// more than one entry
func flagDuplicateKeys(plan *domain.EditPlan, cat *domain.Catalog, edit string) {
	for _, key := range cat.DuplicateKeys() {
		plan.Conflict(key, edit, fmt.Sprintf("data path appears %d times", len(cat.Lookup(key))))
	}
}

func newEntry(c domain.CandidateFile, category, title, desc, link string) domain.Entry {
	return domain.Entry{
		DataPath:    c.Path,
		DerivedLink: link,
		Title:       title,
		Description: desc,
		Tags:        domain.BuildTags(domain.FileType(c.Ext), category),
	}
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
