// Package webgraph defines the core link-graph types shared across subsystems.
package webgraph

// Link is a raw outgoing link as found on a fetched page.
// The URL may be relative to the page it was found on.
type Link struct {
	URL string `json:"url"`
}

// DomainInfo holds everything recorded about a fetched URL,
// currently the ordered list of outgoing links discovered on it.
type DomainInfo struct {
	Links []Link `json:"links"`
}

// Graph is the root aggregate persisted between crawl runs: fetched
// domains and their edges, visit timestamps, and observed redirects.
// It is a plain data holder with no internal locking; a single
// coordinator is expected to own it exclusively.
type Graph struct {
	Domains   map[string]DomainInfo `json:"domains"`
	Visited   map[string]int64      `json:"visited"`
	Redirects map[string]string     `json:"redirects"`
}

// NewGraph returns an empty graph with all maps allocated.
func NewGraph() Graph {
	return Graph{
		Domains:   make(map[string]DomainInfo),
		Visited:   make(map[string]int64),
		Redirects: make(map[string]string),
	}
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := NewGraph()
	for url, info := range g.Domains {
		links := make([]Link, len(info.Links))
		copy(links, info.Links)
		out.Domains[url] = DomainInfo{Links: links}
	}
	for url, ts := range g.Visited {
		out.Visited[url] = ts
	}
	for from, to := range g.Redirects {
		out.Redirects[from] = to
	}
	return out
}

// Resolve returns the recorded redirect target for url, or url itself
// when none is known. Resolution is a single lookup: redirect chains
// are not chased transitively. That is a known limitation of the
// crawl bookkeeping, not an invariant callers may rely on fixing.
func (g *Graph) Resolve(url string) string {
	if target, ok := g.Redirects[url]; ok {
		return target
	}
	return url
}

// SelfLoopOnly reports whether url has a recorded domain entry whose
// sole outgoing link points back at target. Entries like that carry
// no crawlable information and are eviction candidates.
func (g *Graph) SelfLoopOnly(url, target string) bool {
	info, ok := g.Domains[url]
	return ok && len(info.Links) == 1 && info.Links[0].URL == target
}
