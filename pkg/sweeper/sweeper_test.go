package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type flakyStore struct {
	*posts.MemoryStore
	failOn scoopid.ScoopID
}

func (s flakyStore) Delete(ctx context.Context, id scoopid.ScoopID) error {
	if id == s.failOn {
		return errors.New("connection reset")
	}
	return s.MemoryStore.Delete(ctx, id)
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func insert(t *testing.T, store posts.Store, id scoopid.ScoopID, age time.Duration) {
	t.Helper()
	require.NoError(t, store.Insert(context.Background(), &posts.Post{
		Id:        id,
		Kind:      posts.KindText,
		Content:   "tea",
		CreatedAt: now.Add(-age).UnixMilli(),
	}))
}

func TestSweepDeletesExpired(t *testing.T) {
	store := posts.NewMemoryStore()
	bus := events.NewBus()
	svc := posts.NewService(store, bus)
	s := New(svc, time.Hour)
	s.SetClock(func() time.Time { return now })

	insert(t, store, 1, posts.Lifetime+time.Millisecond)
	insert(t, store, 2, posts.Lifetime)
	insert(t, store, 3, time.Hour)
	insert(t, store, 4, 30*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := bus.Subscribe(ctx)

	res, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 4, Deleted: 2}, res)

	left, err := store.All(ctx)
	require.NoError(t, err)
	ids := []scoopid.ScoopID{}
	for _, p := range left {
		ids = append(ids, p.Id)
	}
	assert.Equal(t, []scoopid.ScoopID{3, 2}, ids)

	select {
	case payload := <-sub:
		op, body, err := events.Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, events.OpBulkDeletePosts, op)
		var evt posts.BulkDeletePostsEvent
		require.NoError(t, msgpack.Unmarshal(body, &evt))
		assert.ElementsMatch(t, []scoopid.ScoopID{1, 4}, evt.PostIds)
	case <-time.After(time.Second):
		t.Fatal("no bulk delete event")
	}
}

func TestSweepContinuesPastFailures(t *testing.T) {
	mem := posts.NewMemoryStore()
	svc := posts.NewService(flakyStore{MemoryStore: mem, failOn: 1}, nil)
	s := New(svc, time.Hour)
	s.SetClock(func() time.Time { return now })

	insert(t, mem, 1, 8*24*time.Hour)
	insert(t, mem, 2, 9*24*time.Hour)

	res, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Scanned: 2, Deleted: 1, Failed: 1}, res)

	_, err = mem.Get(context.Background(), 1)
	assert.NoError(t, err)
	_, err = mem.Get(context.Background(), 2)
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}

func TestRunSweepsImmediately(t *testing.T) {
	store := posts.NewMemoryStore()
	s := New(posts.NewService(store, nil), time.Hour)
	s.SetClock(func() time.Time { return now })
	insert(t, store, 1, 8*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		n, _ := store.Count(context.Background())
		return n == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
