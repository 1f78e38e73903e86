// Package manager orchestrates the link graph, the frontier queue, the
// revisit/purge policies, and the persistence store. It is the single
// owner of the mutable graph state and the fail-open boundary for
// persistence errors: a bad snapshot or a failed write is logged and
// the crawl continues.
package manager

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spiderline/webgraph/internal/clock/system"
	"github.com/spiderline/webgraph/internal/frontier"
	"github.com/spiderline/webgraph/internal/metrics"
	"github.com/spiderline/webgraph/internal/policy"
	"github.com/spiderline/webgraph/internal/webgraph"
)

// Options configures a Manager. Store is required; everything else has
// a sensible default.
type Options struct {
	Store   webgraph.GraphStore
	Clock   webgraph.Clock
	Logger  *zap.Logger
	Revisit *policy.Revisit
	Purge   *policy.Purge

	// Seeds are pushed into the frontier before it is rebuilt from the
	// persisted graph's edges.
	Seeds []string
}

// Manager owns the graph and the frontier. It is not safe for
// concurrent use: all mutations must be funnelled through one logical
// owner, typically the fetch-loop driver.
type Manager struct {
	graph   webgraph.Graph
	queue   *frontier.Queue
	store   webgraph.GraphStore
	revisit *policy.Revisit
	purge   *policy.Purge
	clock   webgraph.Clock
	logger  *zap.Logger
}

// New constructs a Manager and seeds the frontier: the persisted graph
// is loaded (falling back to empty on any load failure), purged, and
// every surviving outgoing edge that is still worth fetching is pushed
// into the queue, which is then sorted, deduplicated, and shuffled.
//
// The frontier itself is never persisted: a URL that was queued but
// not visited, and is not reachable through a current graph edge, is
// lost across restarts.
func New(ctx context.Context, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = system.New()
	}
	revisit := opts.Revisit
	if revisit == nil {
		revisit = policy.NewRevisit(clock, 0, false)
	}
	purge := opts.Purge
	if purge == nil {
		purge = policy.NewPurge(nil)
	}

	metrics.Init()

	m := &Manager{
		queue:   frontier.New(),
		store:   opts.Store,
		revisit: revisit,
		purge:   purge,
		clock:   clock,
		logger:  logger.With(zap.String("session", uuid.NewString())),
	}

	for _, seed := range opts.Seeds {
		m.queue.Push(seed)
	}

	g, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("loading graph snapshot failed, starting empty", zap.Error(err))
		metrics.ObserveStoreLoadFailure()
		g = webgraph.NewGraph()
	}
	m.graph = g

	m.sweep(ctx)
	m.seedFromGraph()
	m.queue.Normalize()
	m.observe()

	m.logger.Info("frontier seeded",
		zap.Int("depth", m.queue.Len()),
		zap.Int("domains", len(m.graph.Domains)))

	return m
}

// seedFromGraph enqueues every outgoing edge of every recorded domain
// that survives the purge and revisit policies, resolved to absolute
// form against the domain it was found on.
func (m *Manager) seedFromGraph() {
	for host, info := range m.graph.Domains {
		for _, link := range info.Links {
			target := m.graph.Resolve(link.URL)
			if m.purge.ShouldBePurged(&m.graph, target) {
				continue
			}
			if !m.revisit.ShouldBeQueued(&m.graph, target) {
				continue
			}
			abs, err := webgraph.ResolveReference(host, target)
			if err != nil {
				m.logger.Debug("dropping unresolvable link",
					zap.String("base", host),
					zap.String("link", target),
					zap.Error(err))
				continue
			}
			m.queue.Push(abs)
		}
	}
}

// Dequeue removes and returns the most recently queued URL. The bool
// result is false when the frontier is empty.
func (m *Manager) Dequeue() (string, bool) {
	if depth := m.queue.Len(); depth > 0 {
		m.logger.Info("dequeue", zap.Int("depth", depth))
	}
	url, ok := m.queue.Pop()
	metrics.SetFrontierDepth(m.queue.Len())
	return url, ok
}

// MarkVisited stamps url with the current time and persists. It is
// separate from Save so a partial or failed fetch can still be stamped
// and kept out of the frontier for the revisit window.
func (m *Manager) MarkVisited(ctx context.Context, url string) {
	m.graph.Visited[url] = m.clock.Now().Unix()
	m.persist(ctx)
	m.observe()
}

// Save records the outgoing links discovered on realURL, the final
// post-redirect form of a fetched page. A purge-eligible realURL is
// dropped (and any stale entry for it evicted) without enqueueing
// anything. Otherwise every discovered link that is not already a
// known domain and is still revisit-eligible is resolved to absolute
// form and queued, the entry is stored, and the graph is persisted and
// swept.
func (m *Manager) Save(ctx context.Context, realURL string, info webgraph.DomainInfo) {
	if m.purge.ShouldBePurged(&m.graph, realURL) {
		delete(m.graph.Domains, realURL)
		metrics.ObserveSave("purged")
		m.observe()
		return
	}

	for _, link := range info.Links {
		if _, known := m.graph.Domains[link.URL]; known {
			continue
		}
		if !m.revisit.ShouldBeQueued(&m.graph, link.URL) {
			continue
		}
		abs, err := webgraph.ResolveReference(realURL, link.URL)
		if err != nil {
			m.logger.Debug("dropping unresolvable link",
				zap.String("base", realURL),
				zap.String("link", link.URL),
				zap.Error(err))
			continue
		}
		m.queue.Push(abs)
	}

	m.graph.Domains[realURL] = info
	metrics.ObserveSave("stored")
	m.persist(ctx)
	m.sweep(ctx)
	m.observe()
}

// AddRedirect records an observed HTTP redirect and persists. Lookups
// through the table are single-hop; chains are not followed.
func (m *Manager) AddRedirect(ctx context.Context, from, to string) {
	m.graph.Redirects[from] = to
	m.persist(ctx)
	m.observe()
}

// Len returns the current frontier depth.
func (m *Manager) Len() int {
	return m.queue.Len()
}

// Snapshot returns a deep copy of the current graph, for callers that
// want to inspect state without taking ownership.
func (m *Manager) Snapshot() webgraph.Graph {
	return m.graph.Clone()
}

// sweep evicts purge-eligible entries from the domain map and from the
// frontier, then persists. The domain map is walked via a snapshot
// because evictions change other entries' eligibility mid-sweep.
func (m *Manager) sweep(ctx context.Context) {
	evicted := 0
	snapshot := make(map[string]webgraph.DomainInfo, len(m.graph.Domains))
	for url, info := range m.graph.Domains {
		snapshot[url] = info
	}

	for url, info := range snapshot {
		if m.purge.ShouldBePurged(&m.graph, url) {
			if _, ok := m.graph.Domains[url]; ok {
				delete(m.graph.Domains, url)
				evicted++
			}
		}
		for _, link := range info.Links {
			if m.purge.ShouldBePurged(&m.graph, link.URL) {
				if _, ok := m.graph.Domains[link.URL]; ok {
					delete(m.graph.Domains, link.URL)
					evicted++
				}
			}
		}
	}

	m.queue.Retain(func(url string) bool {
		return !m.purge.ShouldBePurged(&m.graph, url) && m.revisit.ShouldBeQueued(&m.graph, url)
	})

	metrics.ObservePurgedDomains(evicted)
	m.persist(ctx)
}

// persist writes the graph through the store. Failures are counted and
// logged, never propagated: a full disk or an unwritable snapshot must
// not halt the crawl.
func (m *Manager) persist(ctx context.Context) {
	if err := m.store.Save(ctx, m.graph); err != nil {
		metrics.ObserveStoreWriteFailure()
		m.logger.Warn("persisting graph snapshot failed", zap.Error(err))
	}
}

func (m *Manager) observe() {
	metrics.SetFrontierDepth(m.queue.Len())
	metrics.SetGraphSizes(len(m.graph.Domains), len(m.graph.Visited), len(m.graph.Redirects))
}
