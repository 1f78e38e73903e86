package frontier

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(q *Queue) []string {
	var out []string
	for {
		url, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, url)
	}
}

func TestPushPopIsLIFO(t *testing.T) {
	t.Parallel()

	q := New()
	q.Push("http://x/a")
	q.Push("http://x/b")
	q.Push("http://x/c")

	assert.Equal(t, []string{"http://x/c", "http://x/b", "http://x/a"}, drain(q))

	_, ok := q.Pop()
	assert.False(t, ok, "pop on empty queue must report empty")
}

func TestPushDeduplicates(t *testing.T) {
	t.Parallel()

	q := New()
	q.Push("http://x/a")
	q.Push("http://x/a")
	q.Push("http://x/b")
	q.Push("http://x/a")

	require.Equal(t, 2, q.Len())

	entries := drain(q)
	sort.Strings(entries)
	assert.Equal(t, []string{"http://x/a", "http://x/b"}, entries)
}

func TestPushAfterPopAllowsRequeue(t *testing.T) {
	t.Parallel()

	q := New()
	q.Push("http://x/a")
	_, ok := q.Pop()
	require.True(t, ok)

	q.Push("http://x/a")
	assert.Equal(t, 1, q.Len())
}

func TestNormalizePreservesMembership(t *testing.T) {
	t.Parallel()

	q := New()
	urls := []string{"http://x/a", "http://x/b", "http://x/c", "http://x/d"}
	for _, u := range urls {
		q.Push(u)
	}

	q.Normalize()
	require.Equal(t, len(urls), q.Len())

	// Normalizing again must not change the set of entries.
	q.Normalize()
	entries := drain(q)
	sort.Strings(entries)
	assert.Equal(t, urls, entries)
}

func TestRetain(t *testing.T) {
	t.Parallel()

	q := New()
	q.Push("http://keep/a")
	q.Push("http://drop/b")
	q.Push("http://keep/c")

	q.Retain(func(url string) bool {
		return url[:11] == "http://keep"
	})

	entries := drain(q)
	sort.Strings(entries)
	assert.Equal(t, []string{"http://keep/a", "http://keep/c"}, entries)

	// Dropped entries may be pushed again later.
	q.Push("http://drop/b")
	assert.Equal(t, 1, q.Len())
}
