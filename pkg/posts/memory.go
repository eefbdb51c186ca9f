package posts

import (
	"context"
	"sort"
	"sync"

	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
)

// MemoryStore keeps posts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[scoopid.ScoopID]Post
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: make(map[scoopid.ScoopID]Post)}
}

func (s *MemoryStore) Insert(_ context.Context, p *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.Id] = p.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id scoopid.ScoopID) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) All(_ context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(0, 0), nil
}

func (s *MemoryStore) Page(_ context.Context, before scoopid.ScoopID, limit int64) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(before, limit), nil
}

func (s *MemoryStore) sorted(before scoopid.ScoopID, limit int64) []Post {
	posts := []Post{}
	for _, p := range s.posts {
		if before > 0 && p.Id >= before {
			continue
		}
		posts = append(posts, p.Clone())
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Id > posts[j].Id })
	if limit > 0 && int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (s *MemoryStore) Delete(_ context.Context, id scoopid.ScoopID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.posts)), nil
}

func (s *MemoryStore) Transact(_ context.Context, id scoopid.ScoopID, fn TxFunc) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}

	p := stored.Clone()
	if err := fn(&p); err != nil {
		if errors.Is(err, ErrNoChange) {
			return stored.Clone(), nil
		}
		return stored.Clone(), err
	}
	p.Rev = stored.Rev + 1
	s.posts[id] = p
	return p.Clone(), nil
}
