package catalog

import (
	"fmt"
	"html"
	"strings"

	"doccat/internal/domain"
)

const (
	entryIndent   = "            "
	sectionIndent = "        "
)

// RenderEntry renders the <li> markup of an entry without indentation
func RenderEntry(e domain.Entry) string {
	indent := "\n" + entryIndent
	var b strings.Builder
	fmt.Fprintf(&b, `<li class="file" data-path="%s" data-pdf="%s">`, html.EscapeString(e.DataPath), html.EscapeString(e.DerivedLink))
	b.WriteString(indent + `  <div class="meta">`)
	fmt.Fprintf(&b, `%s    <div class="title"><a href="#" class="file-link">%s</a></div>`, indent, html.EscapeString(e.Title))
	fmt.Fprintf(&b, `%s    <div class="desc">%s</div>`, indent, html.EscapeString(e.Description))
	fmt.Fprintf(&b, `%s    <div class="tags small-muted">%s</div>`, indent, html.EscapeString(e.Tags))
	b.WriteString(indent + `  </div>`)
	b.WriteString(indent + `</li>`)
	return b.String()
}

// entryLine places entry markup on its own indented line
func entryLine(markup string) string {
	return entryIndent + markup + "\n"
}

// RenderSection renders a complete category section holding the given entry
// markup blocks
func RenderSection(name string, entries []string) string {
	escaped := html.EscapeString(name)
	var b strings.Builder
	fmt.Fprintf(&b, "%s<section class=\"category\" data-category=\"%s\">\n", sectionIndent, escaped)
	fmt.Fprintf(&b, "%s  <h2>%s</h2>\n", sectionIndent, escaped)
	fmt.Fprintf(&b, "%s  <ul class=\"files\">\n", sectionIndent)
	for _, e := range entries {
		b.WriteString(entryLine(e))
	}
	fmt.Fprintf(&b, "%s  </ul>\n", sectionIndent)
	fmt.Fprintf(&b, "%s</section>\n", sectionIndent)
	return b.String()
}

// Retag rewrites the tag string of raw entry markup for a new category. An
// entry without a tags block gets one as the last child of the <li>.
func Retag(raw, category string) string {
	if loc := tagsPattern.FindStringSubmatchIndex(raw); loc != nil {
		current := cleanText(raw[loc[2]:loc[3]])
		return raw[:loc[2]] + html.EscapeString(domain.RetagForCategory(current, category)) + raw[loc[3]:]
	}
	div := `<div class="tags small-muted">` + html.EscapeString(category) + `</div>`
	if loc := closingItemPattern.FindStringIndex(raw); loc != nil {
		return raw[:loc[0]] + div + raw[loc[0]:]
	}
	return raw + div
}

// Template returns a fresh catalog page with an empty lists container
func Template(title string) string {
	t := html.EscapeString(title)
	return `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>` + t + `</title>
  </head>
  <body>
    <header><h1>` + t + `</h1></header>
    <main class="layout">
      <aside class="sidebar">
        <div id="lists">
        </div>
      </aside>
      <section id="viewer"></section>
    </main>
  </body>
</html>
`
}
