package ports

import "doccat/internal/domain"

// CategoryPolicy picks the category section a new document belongs to
type CategoryPolicy interface {
	// Suggest returns the display name of the target category. sections are
	// the existing section names in document order.
	Suggest(file domain.CandidateFile, sections []string) string
}

// AmbiguityReporter is implemented by policies that can tell when several
// sections matched a file equally well
type AmbiguityReporter interface {
	// Ties returns the sections that tied for the suggestion, or nil when
	// the choice was unambiguous
	Ties(file domain.CandidateFile, sections []string) []string
}
