package feed

import (
	"sort"
	"sync"

	"github.com/japap-media/server/pkg/posts"
)

// Snapshot is one full copy of the post collection, newest first.
type Snapshot struct {
	Version int64
	Posts   []posts.Post
}

// Mirror holds the latest snapshot. It is only ever replaced wholesale.
type Mirror struct {
	mu      sync.RWMutex
	current Snapshot
}

func NewMirror() *Mirror {
	return &Mirror{current: Snapshot{Posts: []posts.Post{}}}
}

// Replace swaps in a new copy of the collection and returns the resulting
// snapshot.
func (m *Mirror) Replace(all []posts.Post) Snapshot {
	sorted := make([]posts.Post, len(all))
	copy(sorted, all)
	SortNewestFirst(sorted)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = Snapshot{
		Version: m.current.Version + 1,
		Posts:   sorted,
	}
	return m.current
}

func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.current.Posts)
}

// SortNewestFirst orders by creation time, then id, both descending.
func SortNewestFirst(p []posts.Post) {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].CreatedAt != p[j].CreatedAt {
			return p[i].CreatedAt > p[j].CreatedAt
		}
		return p[i].Id > p[j].Id
	})
}
