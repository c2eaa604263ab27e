package catalog

import (
	"fmt"
	"sort"
	"strings"

	"doccat/internal/domain"
)

// sectionState is the working model of one section while a plan is folded in
type sectionState struct {
	orig     *domain.CategorySection // nil for sections created by the plan
	name     string
	key      string
	hasList  bool
	removed  map[int]bool
	appended []appendedEntry
	deleted  bool
	edits    map[int]bool
}

type appendedEntry struct {
	key    string
	markup string
}

func (s *sectionState) touch(edit int) {
	s.edits[edit] = true
}

func (s *sectionState) dirty() bool {
	return s.deleted || len(s.removed) > 0 || len(s.appended) > 0
}

// hasKey reports whether a live entry with the key is in the section
func (s *sectionState) hasKey(key string) bool {
	if s.orig != nil {
		for i, e := range s.orig.Entries {
			if !s.removed[i] && e.DataPath == key {
				return true
			}
		}
	}
	for _, a := range s.appended {
		if a.key == key {
			return true
		}
	}
	return false
}

// liveEntries returns the markup of every entry still in the section
func (s *sectionState) liveEntries() []appendedEntry {
	var out []appendedEntry
	if s.orig != nil {
		for i, e := range s.orig.Entries {
			if !s.removed[i] {
				out = append(out, appendedEntry{key: e.DataPath, markup: e.Raw})
			}
		}
	}
	return append(out, s.appended...)
}

// entryLocation is where a live entry currently sits in the model
type entryLocation struct {
	section  *sectionState
	orig     int // index into orig.Entries, or -1
	appended int // index into appended, or -1
}

func (l entryLocation) markup() string {
	if l.orig >= 0 {
		return l.section.orig.Entries[l.orig].Raw
	}
	return l.section.appended[l.appended].markup
}

func (l entryLocation) remove() {
	if l.orig >= 0 {
		l.section.removed[l.orig] = true
		return
	}
	a := l.section.appended
	l.section.appended = append(a[:l.appended:l.appended], a[l.appended+1:]...)
}

// model folds plan edits over the parsed catalog
type model struct {
	buf       string
	cat       *domain.Catalog
	sections  []*sectionState // original sections in document order, then created ones
	conflicts map[int]*domain.EditConflictError
}

func newModel(buf string, cat *domain.Catalog) *model {
	m := &model{buf: buf, cat: cat, conflicts: make(map[int]*domain.EditConflictError)}
	for i := range cat.Sections {
		s := &cat.Sections[i]
		m.sections = append(m.sections, &sectionState{
			orig:    s,
			name:    s.Name,
			key:     s.Key,
			hasList: s.HasList,
			removed: make(map[int]bool),
			edits:   make(map[int]bool),
		})
	}
	return m
}

func (m *model) conflict(idx int, e domain.Edit, reason string) {
	m.conflicts[idx] = &domain.EditConflictError{Key: e.Target(), Edit: e.String(), Reason: reason}
}

// section returns the first live section with the normalized name
func (m *model) section(name string) *sectionState {
	key := domain.NormalizeKey(name)
	for _, s := range m.sections {
		if !s.deleted && s.key == key {
			return s
		}
	}
	return nil
}

// locate finds the single live entry with the key
func (m *model) locate(key string) ([]entryLocation, error) {
	var locs []entryLocation
	for _, s := range m.sections {
		if s.deleted {
			continue
		}
		if s.orig != nil {
			for i, e := range s.orig.Entries {
				if !s.removed[i] && e.DataPath == key {
					locs = append(locs, entryLocation{section: s, orig: i, appended: -1})
				}
			}
		}
		for i, a := range s.appended {
			if a.key == key {
				locs = append(locs, entryLocation{section: s, orig: -1, appended: i})
			}
		}
	}
	switch len(locs) {
	case 0:
		return nil, fmt.Errorf("entry not found")
	case 1:
		return locs, nil
	default:
		return locs, fmt.Errorf("entry appears %d times", len(locs))
	}
}

// match re-locates an as-parsed section snapshot: exact span and text first,
// then the first section with identical text
func (m *model) match(snap domain.CategorySection) *sectionState {
	for _, s := range m.sections {
		if s.orig != nil && s.orig.Span == snap.Span && s.orig.Raw == snap.Raw {
			return s
		}
	}
	for _, s := range m.sections {
		if s.orig != nil && s.orig.Raw == snap.Raw {
			return s
		}
	}
	return nil
}

func (m *model) apply(idx int, e domain.Edit) {
	switch e := e.(type) {
	case domain.CreateCategory:
		m.createCategory(idx, e)
	case domain.InsertEntry:
		m.insertEntry(idx, e)
	case domain.DeleteEntry:
		m.deleteEntry(idx, e)
	case domain.RelocateEntry:
		m.relocateEntry(idx, e)
	case domain.MergeCategory:
		m.mergeCategory(idx, e)
	default:
		m.conflict(idx, e, "unsupported edit")
	}
}

func (m *model) createCategory(idx int, e domain.CreateCategory) {
	key := domain.NormalizeKey(e.Name)
	if key == "" {
		m.conflict(idx, e, "empty category name")
		return
	}
	if m.section(e.Name) != nil {
		m.conflict(idx, e, "category already exists")
		return
	}
	m.sections = append(m.sections, &sectionState{
		name:    strings.TrimSpace(e.Name),
		key:     key,
		hasList: true,
		removed: make(map[int]bool),
		edits:   map[int]bool{idx: true},
	})
}

func (m *model) insertEntry(idx int, e domain.InsertEntry) {
	key := e.Entry.DataPath
	if key == "" {
		m.conflict(idx, e, "entry has no data path")
		return
	}
	if locs, _ := m.locate(key); len(locs) > 0 {
		m.conflict(idx, e, "data path already catalogued")
		return
	}
	target := m.section(e.Category)
	if target == nil {
		m.conflict(idx, e, "category not found")
		return
	}
	if !target.hasList {
		m.conflict(idx, e, "category has no file list")
		return
	}
	target.appended = append(target.appended, appendedEntry{key: key, markup: RenderEntry(e.Entry)})
	target.touch(idx)
}

// deleteEntry removes every occurrence of the key
func (m *model) deleteEntry(idx int, e domain.DeleteEntry) {
	locs, _ := m.locate(e.Key)
	if len(locs) == 0 {
		m.conflict(idx, e, "entry not found")
		return
	}
	for i := len(locs) - 1; i >= 0; i-- {
		locs[i].remove()
		locs[i].section.touch(idx)
	}
}

func (m *model) relocateEntry(idx int, e domain.RelocateEntry) {
	locs, err := m.locate(e.Key)
	if err != nil {
		m.conflict(idx, e, err.Error())
		return
	}
	loc := locs[0]
	if e.From != "" && loc.section.key != domain.NormalizeKey(e.From) {
		m.conflict(idx, e, fmt.Sprintf("entry is in %q", loc.section.name))
		return
	}
	dest := m.section(e.To)
	switch {
	case dest == nil:
		m.conflict(idx, e, "destination category not found")
		return
	case dest == loc.section:
		m.conflict(idx, e, "entry already in destination category")
		return
	case !dest.hasList:
		m.conflict(idx, e, "destination category has no file list")
		return
	}
	markup := Retag(loc.markup(), dest.name)
	loc.remove()
	loc.section.touch(idx)
	dest.appended = append(dest.appended, appendedEntry{key: e.Key, markup: markup})
	dest.touch(idx)
}

func (m *model) mergeCategory(idx int, e domain.MergeCategory) {
	survivor := m.match(e.Survivor)
	if survivor == nil || survivor.deleted {
		m.conflict(idx, e, "surviving section not found")
		return
	}
	var absorbed []*sectionState
	for _, snap := range e.Absorbed {
		s := m.match(snap)
		if s == nil || s.deleted || s == survivor {
			m.conflict(idx, e, fmt.Sprintf("absorbed section at offset %d not found", snap.Span.Start))
			return
		}
		absorbed = append(absorbed, s)
	}
	for _, s := range absorbed {
		if len(s.liveEntries()) > 0 && !survivor.hasList {
			m.conflict(idx, e, "surviving section has no file list")
			return
		}
	}

	for _, s := range absorbed {
		for _, a := range s.liveEntries() {
			if a.key != "" && survivor.hasKey(a.key) {
				continue
			}
			survivor.appended = append(survivor.appended, a)
		}
		s.deleted = true
		s.touch(idx)
	}
	survivor.touch(idx)
}

// op replaces the exact text old found at start
type op struct {
	start int
	old   string
	new   string
	edits map[int]bool
}

func (o op) end() int {
	return o.start + len(o.old)
}

// compile turns the model into disjoint buffer operations
func (m *model) compile() []op {
	var ops []op
	var created []string
	createdEdits := make(map[int]bool)

	for _, s := range m.sections {
		if s.orig == nil {
			if s.deleted {
				continue
			}
			var markups []string
			for _, a := range s.appended {
				markups = append(markups, a.markup)
			}
			created = append(created, RenderSection(s.name, markups))
			for e := range s.edits {
				createdEdits[e] = true
			}
			continue
		}
		if !s.dirty() {
			continue
		}
		if s.deleted {
			span := lineSpan(m.buf, s.orig.Span)
			ops = append(ops, op{start: span.Start, old: m.buf[span.Start:span.End], edits: s.edits})
			continue
		}
		ops = append(ops, op{start: s.orig.Span.Start, old: s.orig.Raw, new: m.rebuild(s), edits: s.edits})
	}

	if len(created) > 0 {
		start := m.cat.Anchor
		if start < len(m.buf) {
			start = lineStart(m.buf, start)
		}
		old := m.buf[start : m.cat.Anchor+len(m.cat.AnchorText)]
		text := strings.Join(created, "")
		if start > 0 && m.buf[start-1] != '\n' {
			text = "\n" + text
		}
		ops = append(ops, op{start: start, old: old, new: text + old, edits: createdEdits})
	}
	return ops
}

// rebuild renders a surviving section with its removals and appends applied
func (m *model) rebuild(s *sectionState) string {
	base := s.orig.Span.Start
	raw := s.orig.Raw

	type local struct {
		start, end int
		text       string
	}
	var changes []local

	for i := range s.removed {
		span := lineSpan(m.buf, s.orig.Entries[i].Span)
		if span.Start < s.orig.List.Start {
			span.Start = s.orig.Entries[i].Span.Start
		}
		if span.End > s.orig.List.End {
			span.End = s.orig.Entries[i].Span.End
		}
		changes = append(changes, local{start: span.Start - base, end: span.End - base})
	}

	if len(s.appended) > 0 {
		at := lineStart(m.buf, s.orig.List.End)
		var b strings.Builder
		if at == s.orig.List.End {
			b.WriteString("\n")
		}
		for _, a := range s.appended {
			b.WriteString(entryLine(a.markup))
		}
		if at == s.orig.List.End {
			b.WriteString(sectionIndent + "  ")
		}
		changes = append(changes, local{start: at - base, end: at - base, text: b.String()})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].start > changes[j].start })
	for _, c := range changes {
		raw = raw[:c.start] + c.text + raw[c.end:]
	}
	return raw
}

// lineStart returns the start of the line holding pos when only spaces or
// tabs precede pos on that line; otherwise pos itself
func lineStart(buf string, pos int) int {
	i := pos
	for i > 0 && (buf[i-1] == ' ' || buf[i-1] == '\t') {
		i--
	}
	if i == 0 || buf[i-1] == '\n' {
		return i
	}
	return pos
}

// lineSpan widens a span to whole lines when nothing else shares them
func lineSpan(buf string, s domain.Span) domain.Span {
	start := lineStart(buf, s.Start)
	if start == s.Start && s.Start > 0 && buf[s.Start-1] != '\n' {
		return s
	}
	end := s.End
	for end < len(buf) && (buf[end] == ' ' || buf[end] == '\t' || buf[end] == '\r') {
		end++
	}
	switch {
	case end == len(buf):
		return domain.Span{Start: start, End: end}
	case buf[end] == '\n':
		return domain.Span{Start: start, End: end + 1}
	default:
		return s
	}
}

// resolve re-validates every op against buf. An op whose text moved is
// re-anchored on the first occurrence of its text. It returns the edits
// behind ops that could not be anchored.
func resolve(buf string, ops []op) ([]op, map[int]bool) {
	failed := make(map[int]bool)
	resolved := make([]op, 0, len(ops))
	for _, o := range ops {
		if o.end() <= len(buf) && buf[o.start:o.end()] == o.old {
			resolved = append(resolved, o)
			continue
		}
		if o.old != "" {
			if i := strings.Index(buf, o.old); i >= 0 {
				o.start = i
				resolved = append(resolved, o)
				continue
			}
		}
		for e := range o.edits {
			failed[e] = true
		}
	}

	sort.Slice(resolved, func(i, j int) bool { return resolved[i].start > resolved[j].start })
	kept := resolved[:0]
	for _, o := range resolved {
		if n := len(kept); n > 0 && o.end() > kept[n-1].start {
			for e := range o.edits {
				failed[e] = true
			}
			continue
		}
		kept = append(kept, o)
	}
	return kept, failed
}

// Apply folds plan into a copy of buf. Edits are validated in plan order;
// rejected edits are reported and never half-applied. The resulting span
// operations are applied in descending offset order.
func Apply(buf string, plan *domain.EditPlan) (string, *domain.ApplyReport, error) {
	cat, err := Parse(buf)
	if err != nil {
		return "", nil, err
	}

	unanchored := make(map[int]bool)
	for {
		m := newModel(buf, cat)
		for i, e := range plan.Edits {
			if unanchored[i] {
				m.conflict(i, e, "anchor text no longer found in catalog")
				continue
			}
			m.apply(i, e)
		}

		ops, failed := resolve(buf, m.compile())
		if len(failed) > 0 {
			progress := false
			for e := range failed {
				if !unanchored[e] {
					unanchored[e] = true
					progress = true
				}
			}
			if !progress {
				return "", nil, fmt.Errorf("apply: unresolvable edits %v", failed)
			}
			continue
		}

		out := buf
		for _, o := range ops {
			out = out[:o.start] + o.new + out[o.end():]
		}
		return out, m.report(plan), nil
	}
}

func (m *model) report(plan *domain.EditPlan) *domain.ApplyReport {
	r := &domain.ApplyReport{}
	for i, e := range plan.Edits {
		if c, ok := m.conflicts[i]; ok {
			r.Skipped = append(r.Skipped, c)
			continue
		}
		r.Applied = append(r.Applied, e)
	}
	return r
}
