package catalog

import (
	"html"
	"regexp"
	"strings"

	"doccat/internal/domain"
)

var (
	sectionOpenPattern  = regexp.MustCompile(`(?i)<section\s+class="category"[^>]*>`)
	sectionClosePattern = regexp.MustCompile(`(?i)</section\s*>`)
	headingPattern      = regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2\s*>`)
	listOpenPattern     = regexp.MustCompile(`(?i)<ul\s+class="files"[^>]*>`)
	listClosePattern    = regexp.MustCompile(`(?i)</ul\s*>`)
	entryPattern        = regexp.MustCompile(`(?i)<li\s+class="file"[\s\S]*?</li\s*>`)

	dataPathPattern    = regexp.MustCompile(`data-path="([^"]*)"`)
	dataPDFPattern     = regexp.MustCompile(`data-pdf="([^"]*)"`)
	titlePattern       = regexp.MustCompile(`(?is)<div\s+class="title"[^>]*>.*?<a[^>]*>(.*?)</a>`)
	descPattern        = regexp.MustCompile(`(?is)<div\s+class="desc"[^>]*>(.*?)</div>`)
	tagsPattern        = regexp.MustCompile(`(?is)<div\s+class="tags[^"]*"[^>]*>(.*?)</div>`)
	markupPattern      = regexp.MustCompile(`(?s)<[^>]*>`)
	closingItemPattern = regexp.MustCompile(`(?i)</li\s*>$`)

	listsAnchorPattern = regexp.MustCompile(`(?i)</div>\s*</aside>`)
	bodyClosePattern   = regexp.MustCompile(`(?i)</body\s*>`)
)

// Parse indexes the category sections and entries of a catalog buffer using
// boundary markers only. Spans are byte offsets into buf.
func Parse(buf string) (*domain.Catalog, error) {
	cat := &domain.Catalog{}

	pos := 0
	for pos < len(buf) {
		loc := sectionOpenPattern.FindStringIndex(buf[pos:])
		if loc == nil {
			break
		}
		start, openEnd := pos+loc[0], pos+loc[1]
		end := sectionEnd(buf, openEnd)
		cat.Sections = append(cat.Sections, parseSection(buf, start, openEnd, end))
		pos = end
	}

	if len(cat.Sections) == 0 && listsAnchorPattern.FindStringIndex(buf) == nil {
		return nil, &domain.MalformedCatalogError{Reason: "no category sections and no lists container"}
	}

	after := 0
	if n := len(cat.Sections); n > 0 {
		after = cat.Sections[n-1].Span.End
	}
	cat.Anchor, cat.AnchorText = findAnchor(buf, after)

	return cat, nil
}

// sectionEnd returns the offset just past the section's closing tag. An
// unterminated section ends where the next one starts or at the end of buf.
func sectionEnd(buf string, openEnd int) int {
	rest := buf[openEnd:]
	next := len(rest)
	if loc := sectionOpenPattern.FindStringIndex(rest); loc != nil {
		next = loc[0]
	}
	if loc := sectionClosePattern.FindStringIndex(rest); loc != nil && loc[0] < next {
		return openEnd + loc[1]
	}
	return openEnd + next
}

func parseSection(buf string, start, openEnd, end int) domain.CategorySection {
	s := domain.CategorySection{
		Span: domain.Span{Start: start, End: end},
		Raw:  buf[start:end],
	}
	body := buf[openEnd:end]

	if m := headingPattern.FindStringSubmatch(body); m != nil {
		s.Name = cleanText(m[1])
	}
	s.Key = domain.NormalizeKey(s.Name)

	open := listOpenPattern.FindStringIndex(body)
	if open == nil {
		return s
	}
	closeLoc := listClosePattern.FindStringIndex(body[open[1]:])
	if closeLoc == nil {
		return s
	}
	s.HasList = true
	s.List = domain.Span{Start: openEnd + open[1], End: openEnd + open[1] + closeLoc[0]}

	inner := buf[s.List.Start:s.List.End]
	for _, loc := range entryPattern.FindAllStringIndex(inner, -1) {
		raw := inner[loc[0]:loc[1]]
		e := parseEntry(raw)
		e.Span = domain.Span{Start: s.List.Start + loc[0], End: s.List.Start + loc[1]}
		s.Entries = append(s.Entries, e)
	}
	return s
}

func parseEntry(raw string) domain.Entry {
	e := domain.Entry{Raw: raw}
	if m := dataPathPattern.FindStringSubmatch(raw); m != nil {
		e.DataPath = html.UnescapeString(m[1])
	}
	if m := dataPDFPattern.FindStringSubmatch(raw); m != nil {
		e.DerivedLink = html.UnescapeString(m[1])
	}
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		e.Title = cleanText(m[1])
	}
	if m := descPattern.FindStringSubmatch(raw); m != nil {
		e.Description = cleanText(m[1])
	}
	if m := tagsPattern.FindStringSubmatch(raw); m != nil {
		e.Tags = cleanText(m[1])
	}
	return e
}

// findAnchor locates the insertion point for new sections
func findAnchor(buf string, after int) (int, string) {
	for _, p := range []*regexp.Regexp{listsAnchorPattern, bodyClosePattern} {
		if loc := p.FindStringIndex(buf[after:]); loc != nil {
			return after + loc[0], buf[after+loc[0] : after+loc[1]]
		}
	}
	return len(buf), ""
}

// cleanText strips inline markup, unescapes entities and folds whitespace
func cleanText(s string) string {
	s = markupPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}
