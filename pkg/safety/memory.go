package safety

import (
	"context"
	"sync"

	"github.com/japap-media/server/pkg/scoopid"
)

type MemoryBlockStore struct {
	mu      sync.Mutex
	entries map[scoopid.ScoopID]BlockEntry
}

func NewMemoryBlockStore() *MemoryBlockStore {
	return &MemoryBlockStore{entries: make(map[scoopid.ScoopID]BlockEntry)}
}

func (s *MemoryBlockStore) All(context.Context) ([]BlockEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := []BlockEntry{}
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *MemoryBlockStore) Insert(_ context.Context, b *BlockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[b.Id] = *b
	return nil
}

func (s *MemoryBlockStore) Delete(_ context.Context, id scoopid.ScoopID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrBlockNotFound
	}
	delete(s.entries, id)
	return nil
}

type MemoryReportStore struct {
	mu        sync.Mutex
	Reports   []Report
	Snapshots map[string]Snapshot
}

func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{Snapshots: make(map[string]Snapshot)}
}

func (s *MemoryReportStore) InsertSnapshot(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Snapshots[snap.Hash] = *snap
	return nil
}

func (s *MemoryReportStore) InsertReport(_ context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reports = append(s.Reports, *r)
	return nil
}
