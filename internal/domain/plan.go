package domain

import "fmt"

// EditKind identifies a structural edit variant
type EditKind int

const (
	EditInsertEntry EditKind = iota
	EditRelocateEntry
	EditMergeCategory
	EditDeleteEntry
	EditCreateCategory
)

func (k EditKind) String() string {
	switch k {
	case EditInsertEntry:
		return "insert"
	case EditRelocateEntry:
		return "relocate"
	case EditMergeCategory:
		return "merge"
	case EditDeleteEntry:
		return "delete"
	case EditCreateCategory:
		return "create-category"
	default:
		return "unknown"
	}
}

// Edit is one structural change to a catalog
type Edit interface {
	Kind() EditKind
	// Target names the entry key or category the edit is about
	Target() string
	String() string
}

// InsertEntry appends a new entry to a category section
type InsertEntry struct {
	Category string
	Entry    Entry
}

func (e InsertEntry) Kind() EditKind { return EditInsertEntry }
func (e InsertEntry) Target() string { return e.Entry.DataPath }
func (e InsertEntry) String() string {
	return fmt.Sprintf("insert %s into %q", e.Entry.DataPath, e.Category)
}

// RelocateEntry moves an entry between sections and rewrites its tags
type RelocateEntry struct {
	Key  string
	From string
	To   string
}

func (e RelocateEntry) Kind() EditKind { return EditRelocateEntry }
func (e RelocateEntry) Target() string { return e.Key }
func (e RelocateEntry) String() string {
	return fmt.Sprintf("relocate %s from %q to %q", e.Key, e.From, e.To)
}

// MergeCategory folds the absorbed sections into the survivor. The sections
// are as-parsed snapshots; the editor re-locates them by span and raw text.
type MergeCategory struct {
	Name     string
	Survivor CategorySection
	Absorbed []CategorySection
}

func (e MergeCategory) Kind() EditKind { return EditMergeCategory }
func (e MergeCategory) Target() string { return e.Name }
func (e MergeCategory) String() string {
	return fmt.Sprintf("merge %d duplicate section(s) into %q", len(e.Absorbed), e.Name)
}

// DeleteEntry removes an entry from the catalog
type DeleteEntry struct {
	Key string
}

func (e DeleteEntry) Kind() EditKind { return EditDeleteEntry }
func (e DeleteEntry) Target() string { return e.Key }
func (e DeleteEntry) String() string { return fmt.Sprintf("delete %s", e.Key) }

// CreateCategory adds an empty category section
type CreateCategory struct {
	Name string
}

func (e CreateCategory) Kind() EditKind { return EditCreateCategory }
func (e CreateCategory) Target() string { return e.Name }
func (e CreateCategory) String() string { return fmt.Sprintf("create category %q", e.Name) }

// EditPlan is the ordered list of edits produced by one planning step
type EditPlan struct {
	Edits     []Edit
	Conflicts []*EditConflictError
}

// Add appends edits to the plan
func (p *EditPlan) Add(edits ...Edit) {
	p.Edits = append(p.Edits, edits...)
}

// Conflict records an edit that was rejected during planning
func (p *EditPlan) Conflict(key, edit, reason string) {
	p.Conflicts = append(p.Conflicts, &EditConflictError{Key: key, Edit: edit, Reason: reason})
}

// IsEmpty reports whether the plan has no edits
func (p *EditPlan) IsEmpty() bool {
	return len(p.Edits) == 0
}

// Count returns the number of edits of the given kind
func (p *EditPlan) Count(kind EditKind) int {
	n := 0
	for _, e := range p.Edits {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

// ApplyReport describes what the structural editor did with a plan
type ApplyReport struct {
	Applied []Edit
	Skipped []*EditConflictError
}

// WasApplied reports whether an edit of the given kind and target was applied
func (r *ApplyReport) WasApplied(kind EditKind, target string) bool {
	for _, e := range r.Applied {
		if e.Kind() == kind && e.Target() == target {
			return true
		}
	}
	return false
}
