// Package frontier provides the in-memory queue of URLs awaiting a
// fetch attempt. The queue is not persisted; it is rebuilt at startup
// from the edges of the persisted graph.
package frontier

import (
	"math/rand"
	"slices"
)

// Queue is a deduplicated, LIFO-ordered list of absolute URLs. It is
// not safe for concurrent use; a single coordinator owns it.
type Queue struct {
	entries []string
	members map[string]struct{}
}

// New constructs an empty queue.
func New() *Queue {
	return &Queue{
		members: make(map[string]struct{}),
	}
}

// Push appends url unless an identical entry is already queued.
func (q *Queue) Push(url string) {
	if _, dup := q.members[url]; dup {
		return
	}
	q.members[url] = struct{}{}
	q.entries = append(q.entries, url)
}

// Pop removes and returns the most recently pushed URL. The bool
// result is false when the queue is empty.
func (q *Queue) Pop() (string, bool) {
	n := len(q.entries)
	if n == 0 {
		return "", false
	}
	url := q.entries[n-1]
	q.entries = q.entries[:n-1]
	delete(q.members, url)
	return url, true
}

// Normalize sorts the entries, drops any duplicates, and then randomly
// permutes the result. Sorting makes deduplication correct and cheap;
// the shuffle afterward keeps crawls from hitting one host in a
// clustered burst.
func (q *Queue) Normalize() {
	slices.Sort(q.entries)
	q.entries = slices.Compact(q.entries)
	rand.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
}

// Retain removes every entry for which keep returns false.
func (q *Queue) Retain(keep func(url string) bool) {
	kept := q.entries[:0]
	for _, url := range q.entries {
		if keep(url) {
			kept = append(kept, url)
			continue
		}
		delete(q.members, url)
	}
	q.entries = kept
}

// Len returns the number of queued URLs.
func (q *Queue) Len() int {
	return len(q.entries)
}
