package comments

import (
	"context"
	"sort"
	"sync"

	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
)

type MemoryStore struct {
	mu       sync.RWMutex
	comments map[string]Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[string]Comment)}
}

func (s *MemoryStore) Insert(_ context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[c.Id] = c.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, postId scoopid.ScoopID, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok || c.PostId != postId {
		return Comment{}, ErrCommentNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, postId scoopid.ScoopID) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := []Comment{}
	for _, c := range s.comments {
		if c.PostId == postId {
			comments = append(comments, c.Clone())
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt != comments[j].CreatedAt {
			return comments[i].CreatedAt < comments[j].CreatedAt
		}
		return comments[i].Id < comments[j].Id
	})
	return comments, nil
}

func (s *MemoryStore) Transact(_ context.Context, postId scoopid.ScoopID, id string, fn TxFunc) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[id]
	if !ok || stored.PostId != postId {
		return Comment{}, ErrCommentNotFound
	}

	c := stored.Clone()
	if err := fn(&c); err != nil {
		if errors.Is(err, ErrNoChange) {
			return stored.Clone(), nil
		}
		return stored.Clone(), err
	}
	c.Rev = stored.Rev + 1
	s.comments[id] = c
	return c.Clone(), nil
}

func (s *MemoryStore) DeleteByPost(_ context.Context, postId scoopid.ScoopID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, c := range s.comments {
		if c.PostId == postId {
			delete(s.comments, id)
			deleted++
		}
	}
	return deleted, nil
}
