package viewer

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"

	"doccat/internal/adapters/filesystem"
	"doccat/internal/ports"
)

// Opener implements ports.DocumentOpener with the platform's default
// application for a file
type Opener struct {
	docRoot     string
	catalogPath string
	launch      func(target string) error
}

// Ensure Opener implements ports.DocumentOpener
var _ ports.DocumentOpener = (*Opener)(nil)

// NewOpener creates an opener for documents under docRoot
func NewOpener(docRoot, catalogPath string) *Opener {
	return &Opener{
		docRoot:     docRoot,
		catalogPath: catalogPath,
		launch:      launch,
	}
}

// OpenPath opens a document, or the catalog when dataPath is empty
func (o *Opener) OpenPath(dataPath string) error {
	uri, err := o.BuildURI(dataPath)
	if err != nil {
		return err
	}
	return o.launch(uri)
}

// BuildURI constructs the file:// URI for a data path
func (o *Opener) BuildURI(dataPath string) (string, error) {
	target := o.catalogPath
	if dataPath != "" {
		abs, err := filesystem.ResolveKey(o.docRoot, dataPath)
		if err != nil {
			return "", err
		}
		target = abs
	}
	if _, err := os.Stat(target); err != nil {
		return "", fmt.Errorf("cannot open %s: %w", target, err)
	}

	u := url.URL{Scheme: "file", Path: filepathToURL(target)}
	return u.String(), nil
}

func launch(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Start()
}
