package feed

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Subscribers tracks the snapshot channels of every connected viewer.
type Subscribers struct {
	// viewer id -> channel id -> channel
	connectionMap map[string]map[string]chan Snapshot

	// Adding and removing take the write lock, pushing takes the read lock.
	mu sync.RWMutex
}

func NewSubscribers() *Subscribers {
	return &Subscribers{
		connectionMap: make(map[string]map[string]chan Snapshot),
	}
}

// Add registers a channel for viewerId. The channel is removed and closed once
// ctx is done.
func (s *Subscribers) Add(ctx context.Context, viewerId string) (<-chan Snapshot, string) {
	chId := "feed_" + uuid.New().String()
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.connectionMap[viewerId]; !ok {
		s.connectionMap[viewerId] = make(map[string]chan Snapshot)
	}
	s.connectionMap[viewerId][chId] = ch

	go s.cleanUp(ctx, chId, viewerId)

	return ch, chId
}

func (s *Subscribers) cleanUp(ctx context.Context, chId string, viewerId string) {
	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.connectionMap[viewerId][chId]; ok {
		close(ch)
	}
	delete(s.connectionMap[viewerId], chId)
	if len(s.connectionMap[viewerId]) == 0 {
		delete(s.connectionMap, viewerId)
	}
}

func (s *Subscribers) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, chans := range s.connectionMap {
		count += len(chans)
	}
	return count
}

// Broadcast hands snap to every channel. A channel still holding an older
// snapshot gets it replaced, so slow readers only ever see the latest one.
func (s *Subscribers) Broadcast(snap Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, chans := range s.connectionMap {
		for _, ch := range chans {
			push(ch, snap)
		}
	}
}

func (s *Subscribers) PushToChannel(snap Snapshot, viewerId string, chId string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ch, ok := s.connectionMap[viewerId][chId]; ok {
		push(ch, snap)
	}
}

// push never lets an older snapshot replace a newer one still waiting in ch.
func push(ch chan Snapshot, snap Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		// Drop whichever of the two is stale
		select {
		case buffered := <-ch:
			if buffered.Version > snap.Version {
				snap = buffered
			}
		default:
		}
	}
}
