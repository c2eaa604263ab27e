package viewer

import (
	"path/filepath"
	"strings"
)

// filepathToURL turns an absolute OS path into a URL path; Windows drive
// paths gain a leading slash
func filepathToURL(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
