package application

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "dataPath" -> "data path")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"dataPath":    "data path",
		"category":    "category",
		"destination": "destination category",
		"pattern":     "pattern",
		"title":       "title",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateDataPath checks that a catalog key has the "./relative" form
func ValidateDataPath(fieldName, value string) error {
	if err := ValidateRequired(fieldName, value); err != nil {
		return err
	}
	if !strings.HasPrefix(value, "./") || strings.Contains(value, "/../") || strings.HasSuffix(value, "/..") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be relative to the document root, got: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}

// CompilePatterns compiles removal patterns, reporting the first invalid one
func CompilePatterns(fieldName string, patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, &ValidationError{Field: fieldName, Message: "at least one pattern is required"}
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("invalid pattern %q: %v", p, err),
			}
		}
		out = append(out, re)
	}
	return out, nil
}
