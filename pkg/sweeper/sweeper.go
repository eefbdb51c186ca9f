package sweeper

import (
	"context"
	"time"

	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result summarizes one sweep.
type Result struct {
	Scanned int
	Deleted int
	Failed  int
}

// Sweeper deletes posts that outlived posts.Lifetime.
type Sweeper struct {
	posts    *posts.Service
	interval time.Duration
	now      func() time.Time
}

func New(postSvc *posts.Service, interval time.Duration) *Sweeper {
	return &Sweeper{
		posts:    postSvc,
		interval: interval,
		now:      time.Now,
	}
}

func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Run sweeps once right away and then on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweepAndLog(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	res, err := s.Sweep(ctx)
	if err != nil {
		logging.Capture(err, "sweep failed", nil)
		return
	}
	logging.Log.WithFields(logrus.Fields{
		"scanned": res.Scanned,
		"deleted": res.Deleted,
		"failed":  res.Failed,
	}).Info("sweep finished")
}

// Sweep scans every post and deletes the expired ones. Each delete stands on
// its own, a failure is logged and counted without stopping the pass.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	var res Result

	all, err := s.posts.List(ctx)
	if err != nil {
		return res, err
	}
	res.Scanned = len(all)

	now := s.now()
	deleted := []scoopid.ScoopID{}
	for _, p := range all {
		if !p.Expired(now) {
			continue
		}
		if err := s.posts.Remove(ctx, p.Id); err != nil {
			// Already gone counts as done
			if errors.Is(err, posts.ErrPostNotFound) {
				continue
			}
			res.Failed++
			logging.Capture(err, "failed deleting expired post", logrus.Fields{"post": p.Id})
			continue
		}
		res.Deleted++
		deleted = append(deleted, p.Id)
	}

	s.posts.AnnounceBulkDelete(ctx, deleted)

	return res, nil
}
