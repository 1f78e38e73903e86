package webgraph

import "strings"

// Denylist stores exact hosts and suffix wildcards derived from
// configuration. URLs whose host matches are never stored or queued.
type Denylist struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewDenylist builds a Denylist from configured patterns. Entries of
// the form "*.example.com" or ".example.com" match the domain and all
// of its subdomains; anything else matches the host exactly. Returns
// nil when no usable patterns are given; a nil Denylist blocks nothing.
func NewDenylist(patterns []string) *Denylist {
	matcher := &Denylist{
		exact: make(map[string]struct{}),
	}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		switch {
		case strings.HasPrefix(value, "*."):
			suffix := strings.TrimPrefix(value, "*.")
			if suffix != "" {
				matcher.addSuffix(suffix)
			}
		case strings.HasPrefix(value, "."):
			suffix := strings.TrimPrefix(value, ".")
			if suffix != "" {
				matcher.addSuffix(suffix)
			}
		default:
			matcher.exact[value] = struct{}{}
		}
	}
	if len(matcher.exact) == 0 && len(matcher.suffixes) == 0 {
		return nil
	}
	return matcher
}

func (d *Denylist) addSuffix(suffix string) {
	for _, existing := range d.suffixes {
		if existing == suffix {
			return
		}
	}
	d.suffixes = append(d.suffixes, suffix)
}

// Blocked reports whether host matches any configured pattern.
func (d *Denylist) Blocked(host string) bool {
	if d == nil {
		return false
	}
	host = strings.TrimSpace(strings.ToLower(host))
	if host == "" {
		return false
	}
	if _, exact := d.exact[host]; exact {
		return true
	}
	for _, suffix := range d.suffixes {
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return true
		}
	}
	return false
}
