package manager

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiderline/webgraph/internal/policy"
	"github.com/spiderline/webgraph/internal/store/memory"
	"github.com/spiderline/webgraph/internal/webgraph"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

func newTestManager(t *testing.T, st webgraph.GraphStore, clk webgraph.Clock, seeds ...string) *Manager {
	t.Helper()
	return New(context.Background(), Options{
		Store: st,
		Clock: clk,
		Seeds: seeds,
	})
}

func drain(m *Manager) []string {
	var out []string
	for {
		url, ok := m.Dequeue()
		if !ok {
			return out
		}
		out = append(out, url)
	}
}

func TestStartsEmptyWhenNothingPersisted(t *testing.T) {
	st := memory.New()
	m := newTestManager(t, st, &stubClock{now: time.Unix(1700000000, 0)})

	assert.Equal(t, 0, m.Len())
	_, ok := m.Dequeue()
	assert.False(t, ok)
}

func TestSeedsAreQueuedAndDeduplicated(t *testing.T) {
	st := memory.New()
	m := newTestManager(t, st, &stubClock{now: time.Unix(1700000000, 0)},
		"http://x/a", "http://x/a", "http://x/b", "")

	// Duplicates collapse and the blank seed is purged during seeding.
	entries := drain(m)
	sort.Strings(entries)
	assert.Equal(t, []string{"http://x/a", "http://x/b"}, entries)
}

func TestSeedingFromPersistedGraph(t *testing.T) {
	ctx := context.Background()
	clk := &stubClock{now: time.Unix(1700000000, 0)}
	st := memory.New()

	g := webgraph.NewGraph()
	g.Domains["http://a.example/"] = webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "/page"},
		{URL: "http://b.example/"},
		{URL: "http://self.example/"},
	}}
	// A redirect whose target was visited an hour ago: within the
	// window, so the edge must not be re-queued.
	g.Redirects["http://b.example/"] = "http://c.example/"
	g.Visited["http://c.example/"] = clk.now.Add(-time.Hour).Unix()
	// A degenerate self-loop-only entry that must not survive startup.
	g.Domains["http://self.example/"] = webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://self.example/"},
	}}
	require.NoError(t, st.Save(ctx, g))

	m := newTestManager(t, st, clk)

	snap := m.Snapshot()
	assert.NotContains(t, snap.Domains, "http://self.example/")
	for url, info := range snap.Domains {
		if len(info.Links) == 1 {
			assert.NotEqual(t, url, info.Links[0].URL)
		}
	}

	entries := drain(m)
	sort.Strings(entries)
	assert.Equal(t, []string{"http://a.example/page", "http://self.example/"}, entries)
}

func TestSaveSelfLoopIsEvicted(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	m := newTestManager(t, st, &stubClock{now: time.Unix(1700000000, 0)})

	m.Save(ctx, "http://d.example/", webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://d.example/"},
	}})

	snap := m.Snapshot()
	assert.NotContains(t, snap.Domains, "http://d.example/")

	// The eviction is persisted too.
	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, persisted.Domains, "http://d.example/")
}

func TestSavePurgeEligibleURLRemovesEntryAndEnqueuesNothing(t *testing.T) {
	ctx := context.Background()
	clk := &stubClock{now: time.Unix(1700000000, 0)}
	st := memory.New()

	g := webgraph.NewGraph()
	g.Domains["http://spam.example/"] = webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://old.example/"},
	}}
	require.NoError(t, st.Save(ctx, g))

	m := New(ctx, Options{
		Store: st,
		Clock: clk,
		Purge: policy.NewPurge(webgraph.NewDenylist([]string{"spam.example"})),
	})
	require.Equal(t, 0, m.Len(), "denylisted edges must not seed the frontier")

	m.Save(ctx, "http://spam.example/", webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://fresh.example/"},
	}})

	assert.NotContains(t, m.Snapshot().Domains, "http://spam.example/")
	assert.Equal(t, 0, m.Len())
}

func TestSaveEnqueuesDiscoveredLinks(t *testing.T) {
	ctx := context.Background()
	clk := &stubClock{now: time.Unix(1700000000, 0)}
	st := memory.New()
	m := newTestManager(t, st, clk)

	m.Save(ctx, "http://a.example/", webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "/relative"},
		{URL: "http://b.example/"},
		{URL: "::not a url::"},
	}})

	snap := m.Snapshot()
	assert.Contains(t, snap.Domains, "http://a.example/")

	entries := drain(m)
	sort.Strings(entries)
	assert.Equal(t, []string{"http://a.example/relative", "http://b.example/"}, entries)
}

func TestSaveSkipsKnownDomains(t *testing.T) {
	ctx := context.Background()
	clk := &stubClock{now: time.Unix(1700000000, 0)}
	st := memory.New()

	g := webgraph.NewGraph()
	g.Domains["http://known.example/"] = webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://elsewhere.example/"},
		{URL: "http://known.example/about"},
	}}
	// Both edges were visited recently so seeding leaves the queue empty.
	g.Visited["http://elsewhere.example/"] = clk.now.Unix()
	g.Visited["http://known.example/about"] = clk.now.Unix()
	require.NoError(t, st.Save(ctx, g))

	m := newTestManager(t, st, clk)
	require.Equal(t, 0, m.Len())

	m.Save(ctx, "http://a.example/", webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://known.example/"},
		{URL: "http://new.example/"},
	}})

	entries := drain(m)
	assert.Equal(t, []string{"http://new.example/"}, entries,
		"already-recorded domains are not re-queued")
}

func TestMarkVisitedSuppressesRequeueForWindow(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	clk := &stubClock{now: base}
	st := memory.New()

	revisit := policy.NewRevisit(clk, 0, false)
	m := New(ctx, Options{Store: st, Clock: clk, Revisit: revisit})

	m.MarkVisited(ctx, "http://x/a")

	snap := m.Snapshot()
	assert.Equal(t, base.Unix(), snap.Visited["http://x/a"])

	clk.now = base.Add(3600 * time.Second)
	g := m.Snapshot()
	assert.False(t, revisit.ShouldBeQueued(&g, "http://x/a"))

	clk.now = base.Add(700000 * time.Second)
	g = m.Snapshot()
	assert.True(t, revisit.ShouldBeQueued(&g, "http://x/a"))
}

func TestMarkVisitedOverwritesOlderTimestamp(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	clk := &stubClock{now: base}
	st := memory.New()
	m := newTestManager(t, st, clk)

	m.MarkVisited(ctx, "http://x/a")
	clk.now = base.Add(time.Hour)
	m.MarkVisited(ctx, "http://x/a")

	assert.Equal(t, base.Add(time.Hour).Unix(), m.Snapshot().Visited["http://x/a"])
}

func TestAddRedirectPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	clk := &stubClock{now: time.Unix(1700000000, 0)}
	st := memory.New()

	m := newTestManager(t, st, clk)
	m.AddRedirect(ctx, "http://a/", "http://b/")

	persisted, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://b/", persisted.Redirects["http://a/"])

	// A fresh manager over the same store sees the redirect.
	m2 := newTestManager(t, st, clk)
	assert.Equal(t, "http://b/", m2.Snapshot().Redirects["http://a/"])
}

func TestVisitedURLIsNotReseededAcrossRestart(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0).UTC()
	clk := &stubClock{now: base}
	st := memory.New()

	m := newTestManager(t, st, clk)
	m.Save(ctx, "http://a.example/", webgraph.DomainInfo{Links: []webgraph.Link{
		{URL: "http://b.example/"},
	}})
	m.MarkVisited(ctx, "http://b.example/")

	// Within the window the edge stays out of a restarted frontier.
	m2 := newTestManager(t, st, clk)
	assert.Equal(t, 0, m2.Len())

	// Past the window it is eligible again.
	clk.now = base.Add(8 * 24 * time.Hour)
	m3 := newTestManager(t, st, clk)
	entries := drain(m3)
	assert.Contains(t, entries, "http://b.example/")
}

func TestMutationsPersistSynchronously(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	m := newTestManager(t, st, &stubClock{now: time.Unix(1700000000, 0)})

	before := st.Saves()
	m.MarkVisited(ctx, "http://x/a")
	m.AddRedirect(ctx, "http://x/a", "http://x/b")
	m.Save(ctx, "http://x/c", webgraph.DomainInfo{})
	assert.GreaterOrEqual(t, st.Saves()-before, 3)
}
