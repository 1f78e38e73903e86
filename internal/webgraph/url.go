package webgraph

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveReference resolves a possibly-relative link against the URL of
// the page it was found on and returns the absolute form. It fails when
// either input does not parse or the result is not absolute.
func ResolveReference(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u, err := b.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("resolve reference: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("resolved url %q is not absolute", u.String())
	}
	return u.String(), nil
}

// Host extracts the lowercase hostname from a URL, or "" if the URL
// does not parse or has no host.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
