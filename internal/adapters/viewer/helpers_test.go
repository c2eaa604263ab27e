package viewer

import (
	"net/url"
	"testing"
)

func unescape(t *testing.T, uri string) string {
	t.Helper()
	u, err := url.Parse(uri)
	if err != nil {
		t.Fatalf("invalid URI %q: %v", uri, err)
	}
	return u.Scheme + "://" + u.Path
}
