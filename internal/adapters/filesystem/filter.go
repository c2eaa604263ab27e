package filesystem

import (
	"strings"
)

var (
	// generated companion indexes that are never catalogued
	generatedNames = map[string]bool{
		"index.md":          true,
		"_autogen_index.md": true,
	}

	systemNames = map[string]bool{
		"thumbs.db":   true,
		"desktop.ini": true,
	}

	editorSuffixes = []string{"~", ".swp", ".swo", ".tmp"}
)

// IsExcluded reports whether a file name must never become a catalog entry:
// hidden files, office lock files, editor artifacts, system files, backups
// and generated indexes
func IsExcluded(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case name == "":
		return true
	case strings.HasPrefix(name, "."), strings.HasPrefix(name, "~$"):
		return true
	case strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"):
		return true
	case generatedNames[lower], systemNames[lower]:
		return true
	case strings.HasSuffix(lower, ".bak"), strings.Contains(lower, ".bak."):
		return true
	}
	for _, s := range editorSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}
