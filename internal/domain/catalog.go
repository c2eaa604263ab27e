package domain

import (
	"strings"
	"unicode"
)

// Span is a half-open byte range [Start, End) into a catalog buffer
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether o lies entirely inside s
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Overlaps reports whether the two spans share at least one byte
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Entry is one catalogued document inside a category section
type Entry struct {
	DataPath    string // catalog-wide unique key (data-path attribute)
	DerivedLink string // companion rendition (data-pdf attribute)
	Title       string
	Description string
	Tags        string
	Span        Span
	Raw         string // exact as-parsed <li> markup
}

// Key returns the identity of the entry
func (e Entry) Key() string {
	return e.DataPath
}

// CategorySection is one <section class="category"> block of the catalog
type CategorySection struct {
	Name    string
	Key     string // normalized name
	Span    Span
	List    Span // inner span of <ul class="files">: Start after the open tag, End at </ul>
	HasList bool
	Entries []Entry
	Raw     string
}

// Catalog is the parsed, read-only index of a catalog buffer
type Catalog struct {
	Sections []CategorySection
	// Anchor is the offset where new sections are inserted
	Anchor int
	// AnchorText is the exact markup found at Anchor (may be empty when the
	// anchor is the end of the buffer)
	AnchorText string
}

// EntryRef locates an entry inside a catalog
type EntryRef struct {
	Section int
	Index   int
}

// Entry resolves a reference
func (c *Catalog) Entry(ref EntryRef) Entry {
	return c.Sections[ref.Section].Entries[ref.Index]
}

// Lookup returns every occurrence of the given data path, in document order
func (c *Catalog) Lookup(dataPath string) []EntryRef {
	var refs []EntryRef
	for si, s := range c.Sections {
		for ei, e := range s.Entries {
			if e.DataPath == dataPath {
				refs = append(refs, EntryRef{Section: si, Index: ei})
			}
		}
	}
	return refs
}

// SectionsByKey returns the indexes of live sections whose normalized name is key
func (c *Catalog) SectionsByKey(key string) []int {
	var idx []int
	for i, s := range c.Sections {
		if s.Key == key {
			idx = append(idx, i)
		}
	}
	return idx
}

// FindSection returns the first section matching name after normalization
func (c *Catalog) FindSection(name string) (*CategorySection, bool) {
	key := NormalizeKey(name)
	for i := range c.Sections {
		if c.Sections[i].Key == key {
			return &c.Sections[i], true
		}
	}
	return nil, false
}

// SectionNames returns the display names of all sections in document order
func (c *Catalog) SectionNames() []string {
	names := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		names = append(names, s.Name)
	}
	return names
}

// DataPaths returns the set of data paths of all live entries
func (c *Catalog) DataPaths() map[string]bool {
	paths := make(map[string]bool)
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if e.DataPath != "" {
				paths[e.DataPath] = true
			}
		}
	}
	return paths
}

// Referenced returns every path the catalog points at, either as an entry
// key or as a companion link
func (c *Catalog) Referenced() map[string]bool {
	refs := c.DataPaths()
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if e.DerivedLink != "" {
				refs[e.DerivedLink] = true
			}
		}
	}
	return refs
}

// DuplicateKeys returns data paths that appear more than once, sorted by
// first appearance
func (c *Catalog) DuplicateKeys() []string {
	seen := make(map[string]int)
	var order []string
	for _, s := range c.Sections {
		for _, e := range s.Entries {
			if e.DataPath == "" {
				continue
			}
			if seen[e.DataPath] == 0 {
				order = append(order, e.DataPath)
			}
			seen[e.DataPath]++
		}
	}
	var dups []string
	for _, p := range order {
		if seen[p] > 1 {
			dups = append(dups, p)
		}
	}
	return dups
}

// EntryCount returns the total number of entries
func (c *Catalog) EntryCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Entries)
	}
	return n
}

// NormalizeKey lower-cases a category name and folds runs of whitespace into
// single spaces
func NormalizeKey(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), " ")
}
