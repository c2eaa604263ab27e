package reconcile

import (
	"path"
	"sort"
	"strings"
	"unicode"

	"doccat/internal/domain"
)

// DefaultCategory is used when no rule, override, or section name matches
const DefaultCategory = "Uncategorized"

// Rule routes files by extension or name keyword to a category. The rule
// only fires when a section with a matching name already exists.
type Rule struct {
	Category   string   `mapstructure:"category" yaml:"category"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Keywords   []string `mapstructure:"keywords" yaml:"keywords"`
}

// DefaultRules sends markdown and guide-like documents to Guides
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Guides", Extensions: []string{".md"}, Keywords: []string{"guide"}},
	}
}

// LexicalPolicy picks categories from explicit overrides, rules, and the
// overlap between file name tokens and section name tokens.
type LexicalPolicy struct {
	// Overrides maps a data path, file name, or name glob to a category
	Overrides map[string]string
	Rules     []Rule
	Default   string
}

// NewLexicalPolicy creates a policy with the default rules
func NewLexicalPolicy() *LexicalPolicy {
	return &LexicalPolicy{Rules: DefaultRules(), Default: DefaultCategory}
}

// Suggest implements ports.CategoryPolicy
func (p *LexicalPolicy) Suggest(file domain.CandidateFile, sections []string) string {
	if cat, ok := p.override(file); ok {
		return cat
	}

	if s, ok := p.ruleSection(file, sections); ok {
		return s
	}

	if s, ok := bestOverlap(file.Stem(), sections); ok {
		return s
	}

	if p.Default != "" {
		return p.Default
	}
	return DefaultCategory
}

// Ties implements ports.AmbiguityReporter. Overrides and rules are never
// ambiguous; only a tie on token overlap is reported.
func (p *LexicalPolicy) Ties(file domain.CandidateFile, sections []string) []string {
	if _, ok := p.override(file); ok {
		return nil
	}
	if _, ok := p.ruleSection(file, sections); ok {
		return nil
	}
	if ties := overlapTies(file.Stem(), sections); len(ties) > 1 {
		return ties
	}
	return nil
}

// ruleSection returns the existing section named by the first matching rule
func (p *LexicalPolicy) ruleSection(file domain.CandidateFile, sections []string) (string, bool) {
	name := strings.ToLower(file.Name())
	ext := strings.ToLower(file.Ext)
	for _, r := range p.Rules {
		if !r.matches(name, ext) {
			continue
		}
		if s, ok := findSection(sections, r.Category); ok {
			return s, true
		}
	}
	return "", false
}

// override matches case-insensitively; config loaders lower-case map keys
func (p *LexicalPolicy) override(file domain.CandidateFile) (string, bool) {
	if len(p.Overrides) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(p.Overrides))
	for k := range p.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	name := strings.ToLower(file.Name())
	for _, k := range keys {
		if strings.EqualFold(k, file.Path) || strings.EqualFold(k, name) {
			return p.Overrides[k], true
		}
	}
	for _, k := range keys {
		if ok, _ := path.Match(strings.ToLower(k), name); ok {
			return p.Overrides[k], true
		}
	}
	return "", false
}

func (r Rule) matches(name, ext string) bool {
	for _, e := range r.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	for _, k := range r.Keywords {
		if k != "" && strings.Contains(name, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// findSection matches a rule category against existing sections, exactly
// first and then by prefix so "Guides" also finds "Guides (setup)".
func findSection(sections []string, category string) (string, bool) {
	key := domain.NormalizeKey(category)
	if key == "" {
		return "", false
	}
	for _, s := range sections {
		if domain.NormalizeKey(s) == key {
			return s, true
		}
	}
	for _, s := range sections {
		if strings.HasPrefix(domain.NormalizeKey(s), key) {
			return s, true
		}
	}
	return "", false
}

func bestOverlap(stem string, sections []string) (string, bool) {
	ties := overlapTies(stem, sections)
	if len(ties) == 0 {
		return "", false
	}
	return ties[0], true
}

// overlapTies returns the sections sharing the highest non-zero token
// overlap with stem, in document order. Sections with the same normalized
// name count once.
func overlapTies(stem string, sections []string) []string {
	fileTokens := tokens(stem)
	if len(fileTokens) == 0 {
		return nil
	}
	var best []string
	bestScore := 0
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		key := domain.NormalizeKey(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		score := 0
		for _, st := range tokens(s) {
			for _, ft := range fileTokens {
				if ft == st || ft+"s" == st || ft == st+"s" {
					score++
					break
				}
			}
		}
		switch {
		case score == 0 || score < bestScore:
		case score > bestScore:
			best, bestScore = []string{s}, score
		default:
			best = append(best, s)
		}
	}
	return best
}

// tokens splits text into lower-case words of at least three characters
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			out = append(out, f)
		}
	}
	return out
}
