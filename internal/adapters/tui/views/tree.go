package views

import "doccat/internal/domain"

// NodeKind tells sections and entries apart
type NodeKind int

const (
	SectionNode NodeKind = iota
	EntryNode
)

// Node is one row of the catalog tree
type Node struct {
	Kind      NodeKind
	Name      string // section name or entry title
	Section   string // owning section name
	Entry     domain.Entry
	Duplicate bool
	Expanded  bool
	Children  []*Node
	Parent    *Node
}

// BuildTree turns a parsed catalog into section nodes with their entries.
// Sections named in expanded start open.
func BuildTree(cat *domain.Catalog, expanded map[string]bool) []*Node {
	if cat == nil {
		return nil
	}
	roots := make([]*Node, 0, len(cat.Sections))
	for _, s := range cat.Sections {
		node := &Node{
			Kind:      SectionNode,
			Name:      s.Name,
			Section:   s.Name,
			Duplicate: len(cat.SectionsByKey(s.Key)) > 1,
			Expanded:  expanded[s.Name],
		}
		for _, e := range s.Entries {
			title := e.Title
			if title == "" {
				title = e.DataPath
			}
			node.Children = append(node.Children, &Node{
				Kind:    EntryNode,
				Name:    title,
				Section: s.Name,
				Entry:   e,
				Parent:  node,
			})
		}
		roots = append(roots, node)
	}
	return roots
}

// Flatten returns the visible rows in display order
func Flatten(roots []*Node) []*Node {
	var out []*Node
	for _, n := range roots {
		out = append(out, n)
		if n.Expanded {
			out = append(out, n.Children...)
		}
	}
	return out
}
