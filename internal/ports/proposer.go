package ports

import "context"

// FileInfo represents a file to be catalogued
type FileInfo struct {
	Path    string // Catalog path, e.g. ./report.pdf
	Name    string
	Content string // May be empty for binary files
}

// EntryProposal carries metadata suggested for a new catalog entry
type EntryProposal struct {
	Path        string
	Title       string
	Description string
	Category    string
	Reasoning   string
}

// EntryProposer suggests titles, descriptions and categories for new files
type EntryProposer interface {
	// ProposeEntries analyzes the files against the existing categories
	ProposeEntries(ctx context.Context, files []FileInfo, categories []string) ([]EntryProposal, error)

	// IsAvailable returns true if the proposer backend is installed
	IsAvailable() bool
}
