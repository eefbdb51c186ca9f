package feed

import (
	"context"
	"sync"

	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/posts"
	"github.com/sirupsen/logrus"
)

// Source lists the whole post collection.
type Source interface {
	List(ctx context.Context) ([]posts.Post, error)
}

// RelayFunc receives events that do not change the post collection.
type RelayFunc func(op uint8, body []byte)

// Synchronizer keeps a Mirror in line with the post collection and fans every
// new snapshot out to subscribers.
type Synchronizer struct {
	source Source
	mirror *Mirror
	subs   *Subscribers
	relay  RelayFunc

	refreshLock sync.Mutex

	// Held while a snapshot is swapped in and broadcast, and while a new
	// subscriber reads its first one, so nobody starts from a stale copy.
	publishLock sync.Mutex
}

func NewSynchronizer(source Source) *Synchronizer {
	return &Synchronizer{
		source: source,
		mirror: NewMirror(),
		subs:   NewSubscribers(),
	}
}

func (s *Synchronizer) SetRelay(fn RelayFunc) {
	s.relay = fn
}

func (s *Synchronizer) Mirror() *Mirror {
	return s.mirror
}

func (s *Synchronizer) Subscribers() *Subscribers {
	return s.subs
}

// Subscribe registers a viewer and immediately hands it the current snapshot.
func (s *Synchronizer) Subscribe(ctx context.Context, viewerId string) <-chan Snapshot {
	s.publishLock.Lock()
	defer s.publishLock.Unlock()

	ch, chId := s.subs.Add(ctx, viewerId)
	s.subs.PushToChannel(s.mirror.Snapshot(), viewerId, chId)
	return ch
}

// Refresh reads the full collection, replaces the mirror and pushes the new
// snapshot.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.refreshLock.Lock()
	defer s.refreshLock.Unlock()

	all, err := s.source.List(ctx)
	if err != nil {
		return err
	}
	s.publishLock.Lock()
	snap := s.mirror.Replace(all)
	s.subs.Broadcast(snap)
	s.publishLock.Unlock()

	logging.Log.WithFields(logrus.Fields{
		"version":     snap.Version,
		"posts":       len(snap.Posts),
		"subscribers": s.subs.Count(),
	}).Debug("feed refreshed")

	return nil
}

// Run refreshes once, then again on every post event until ctx is done or
// the event channel closes.
func (s *Synchronizer) Run(ctx context.Context, payloads <-chan []byte) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-payloads:
			if !ok {
				return nil
			}
			s.handle(ctx, payload)
		}
	}
}

func (s *Synchronizer) handle(ctx context.Context, payload []byte) {
	op, body, err := events.Decode(payload)
	if err != nil {
		logging.Log.WithError(err).Warn("dropping malformed event")
		return
	}

	if !events.IsPostOp(op) {
		if s.relay != nil {
			s.relay(op, body)
		}
		return
	}

	if err := s.Refresh(ctx); err != nil {
		logging.Capture(err, "feed refresh failed", logrus.Fields{"op": op})
	}
}
