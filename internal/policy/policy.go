// Package policy implements the revisit and purge decisions that gate
// which URLs enter the frontier and which graph entries survive a sweep.
package policy

import (
	"strings"
	"time"

	"github.com/spiderline/webgraph/internal/webgraph"
)

// DefaultRevisitWindow is how long a visited URL stays ineligible for
// re-queueing.
const DefaultRevisitWindow = 7 * 24 * time.Hour

// Revisit decides whether a URL is worth (re)fetching. Policies are
// stateless; the graph under judgment is passed to each call.
type Revisit struct {
	clock  webgraph.Clock
	window time.Duration

	// refetchEmptySites treats a domain with zero recorded links as a
	// likely mis-fetch and re-queues it regardless of the window.
	// Off by default.
	refetchEmptySites bool
}

// NewRevisit constructs a Revisit policy. A non-positive window falls
// back to DefaultRevisitWindow.
func NewRevisit(clock webgraph.Clock, window time.Duration, refetchEmptySites bool) *Revisit {
	if window <= 0 {
		window = DefaultRevisitWindow
	}
	return &Revisit{
		clock:             clock,
		window:            window,
		refetchEmptySites: refetchEmptySites,
	}
}

// ShouldBeQueued reports whether url is currently eligible for the
// frontier. A URL visited within the window is not; neither is a URL
// whose one-hop redirect target was visited within the window.
func (p *Revisit) ShouldBeQueued(g *webgraph.Graph, url string) bool {
	if p.refetchEmptySites {
		if info, ok := g.Domains[url]; ok && len(info.Links) == 0 {
			return true
		}
	}

	now := p.clock.Now().Unix()
	windowSec := int64(p.window / time.Second)

	if ts, ok := g.Visited[url]; ok && now-ts < windowSec {
		return false
	}

	if target, ok := g.Redirects[url]; ok {
		if p.refetchEmptySites {
			if info, ok := g.Domains[target]; ok && len(info.Links) == 0 {
				return true
			}
		}
		if ts, ok := g.Visited[target]; ok && now-ts < windowSec {
			return false
		}
	}

	return true
}

// Purge decides which URLs and graph entries are degenerate or
// unwanted and must be evicted.
type Purge struct {
	deny *webgraph.Denylist
}

// NewPurge constructs a Purge policy. deny may be nil, in which case
// no host is denylisted.
func NewPurge(deny *webgraph.Denylist) *Purge {
	return &Purge{deny: deny}
}

// ShouldBePurged reports whether url must be evicted from the graph
// and kept out of the frontier: blank URLs, domains whose only link is
// a self-loop, URLs whose redirect target records that same self-loop
// back at them, and denylisted hosts.
func (p *Purge) ShouldBePurged(g *webgraph.Graph, url string) bool {
	if strings.TrimSpace(url) == "" {
		return true
	}

	if g.SelfLoopOnly(url, url) {
		return true
	}

	if target, ok := g.Redirects[url]; ok && g.SelfLoopOnly(target, url) {
		return true
	}

	return p.deny.Blocked(webgraph.Host(url))
}
