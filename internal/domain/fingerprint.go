package domain

import (
	"path"
	"sort"
	"strings"
	"time"
)

// FingerprintRecord is the persisted knowledge about one processed file
type FingerprintRecord struct {
	Path      string    `json:"-"`
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	Ext       string    `json:"ext"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Fingerprints maps relative path to record
type Fingerprints map[string]FingerprintRecord

// Paths returns the record keys in sorted order
func (f Fingerprints) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Clone returns a shallow copy of the map
func (f Fingerprints) Clone() Fingerprints {
	out := make(Fingerprints, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Record upserts the fingerprint of a candidate, keeping FirstSeen
func (f Fingerprints) Record(c CandidateFile, now time.Time) {
	rec, ok := f[c.Path]
	if !ok {
		rec.FirstSeen = now
	}
	rec.Path = c.Path
	rec.Hash = c.Hash
	rec.Size = c.Size
	rec.Ext = c.Ext
	rec.LastSeen = now
	f[c.Path] = rec
}

// CandidateFile is a file found on disk during a scan
type CandidateFile struct {
	Path    string // catalog-relative key, "./sub/name.ext"
	AbsPath string
	Hash    string
	Size    int64
	Ext     string
	Derived bool // lives under the derived-rendition root
}

// Name returns the base name of the file
func (c CandidateFile) Name() string {
	return path.Base(c.Path)
}

// Stem returns the base name without its last extension
func (c CandidateFile) Stem() string {
	name := c.Name()
	return strings.TrimSuffix(name, path.Ext(name))
}

// Diff is the set comparison between a scan and the fingerprint store
type Diff struct {
	New       []string
	Changed   []string
	Removed   []string
	Unchanged []string
}

// IsEmpty reports whether nothing was added, changed, or removed
func (d Diff) IsEmpty() bool {
	return len(d.New) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// ComputeDiff compares the scanned candidates against the stored records
func ComputeDiff(candidates []CandidateFile, records Fingerprints) Diff {
	var d Diff
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c.Path] = true
		rec, ok := records[c.Path]
		switch {
		case !ok:
			d.New = append(d.New, c.Path)
		case rec.Hash != c.Hash:
			d.Changed = append(d.Changed, c.Path)
		default:
			d.Unchanged = append(d.Unchanged, c.Path)
		}
	}
	for p := range records {
		if !seen[p] {
			d.Removed = append(d.Removed, p)
		}
	}
	sort.Strings(d.New)
	sort.Strings(d.Changed)
	sort.Strings(d.Removed)
	sort.Strings(d.Unchanged)
	return d
}
