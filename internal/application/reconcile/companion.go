package reconcile

import (
	"path"
	"strings"

	"doccat/internal/domain"
)

// Companions pairs every source document with its derived rendition and
// every derived rendition with its source. A rendition named "report.md" or
// "report.pdf.md" belongs to "report.pdf"; PDF sources win over other
// extensions sharing the stem.
func Companions(candidates []domain.CandidateFile) map[string]string {
	byName := make(map[string]string)
	byStem := make(map[string]string)
	for _, c := range candidates {
		if c.Derived {
			continue
		}
		if _, ok := byName[c.Name()]; !ok {
			byName[c.Name()] = c.Path
		}
		prev, ok := byStem[c.Stem()]
		if !ok || (strings.EqualFold(c.Ext, ".pdf") && !strings.EqualFold(path.Ext(prev), ".pdf")) {
			byStem[c.Stem()] = c.Path
		}
	}

	out := make(map[string]string)
	for _, c := range candidates {
		if !c.Derived {
			continue
		}
		src, ok := byName[c.Stem()]
		if !ok {
			src, ok = byStem[c.Stem()]
		}
		if !ok {
			continue
		}
		out[c.Path] = src
		if _, taken := out[src]; !taken {
			out[src] = c.Path
		}
	}
	return out
}

// catalogedSource finds a catalogued data path a derived rendition belongs
// to when the source is no longer on disk
func catalogedSource(c domain.CandidateFile, cat *domain.Catalog) (string, bool) {
	stem := c.Stem()
	var byStem string
	for _, s := range cat.Sections {
		for _, e := range s.Entries {
			if e.DataPath == "" || e.DataPath == c.Path {
				continue
			}
			base := path.Base(e.DataPath)
			if base == stem {
				return e.DataPath, true
			}
			if byStem == "" && strings.TrimSuffix(base, path.Ext(base)) == stem && strings.EqualFold(path.Ext(base), ".pdf") {
				byStem = e.DataPath
			}
		}
	}
	return byStem, byStem != ""
}
