package domain

import (
	"regexp"
	"strings"
)

// TagSeparator joins the type segment and the category segment of a tag string
const TagSeparator = "·"

var leadingTypePattern = regexp.MustCompile(`^\s*([A-Za-z0-9_()+\- ]+)`)

// FileType returns the upper-case type label for an extension such as ".pdf"
func FileType(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return "FILE"
	}
	return strings.ToUpper(ext)
}

// BuildTags renders the "<TYPE> · <Category>" tag string
func BuildTags(fileType, category string) string {
	return fileType + " " + TagSeparator + " " + category
}

// RetagForCategory rewrites the category segment of a tag string and keeps
// the left segment. Without a separator a leading type word is kept if one
// can be recognised.
func RetagForCategory(tags, category string) string {
	if i := strings.Index(tags, TagSeparator); i >= 0 {
		left := strings.TrimSpace(tags[:i])
		if left == "" {
			return category
		}
		return BuildTags(left, category)
	}
	if m := leadingTypePattern.FindStringSubmatch(tags); m != nil {
		if left := strings.TrimSpace(m[1]); left != "" {
			return BuildTags(left, category)
		}
	}
	return category
}

// TagType returns the left segment of a tag string
func TagType(tags string) string {
	if i := strings.Index(tags, TagSeparator); i >= 0 {
		return strings.TrimSpace(tags[:i])
	}
	return strings.TrimSpace(tags)
}
