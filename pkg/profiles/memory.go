package profiles

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (s *MemoryStore) GetByNormalized(_ context.Context, normalized string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Normalized != "" && p.Normalized == normalized {
			return p, nil
		}
	}
	return Profile{}, ErrProfileNotFound
}

func (s *MemoryStore) Upsert(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Normalized != "" {
		for id, other := range s.profiles {
			if id != p.Id && other.Normalized == p.Normalized {
				return ErrPseudonymTaken
			}
		}
	}
	s.profiles[p.Id] = *p
	return nil
}
