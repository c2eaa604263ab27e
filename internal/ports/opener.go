package ports

// DocumentOpener opens catalog documents in the system viewer
type DocumentOpener interface {
	// OpenPath opens a data path relative to the document root. An empty
	// path opens the catalog itself.
	OpenPath(dataPath string) error
}
