package comments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/posts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var author = posts.Author{Id: "author", Username: "tea_spiller"}

func setup(t *testing.T) (*Service, *posts.MemoryStore, *MemoryStore) {
	t.Helper()
	postStore := posts.NewMemoryStore()
	require.NoError(t, postStore.Insert(context.Background(), &posts.Post{Id: 1, Kind: posts.KindText, Content: "tea"}))

	bus := events.NewBus()
	postSvc := posts.NewService(postStore, bus)
	store := NewMemoryStore()
	svc := NewService(store, postSvc, bus)
	postSvc.SetCascade(svc)
	return svc, postStore, store
}

func TestAddIncrementsCounterOnce(t *testing.T) {
	svc, postStore, _ := setup(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, 1, author, "first", "")
	require.NoError(t, err)
	b, err := svc.Add(ctx, 1, author, "second", "")
	require.NoError(t, err)
	assert.NotEqual(t, a.Id, b.Id)

	p, err := postStore.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Stats.Comments)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAddToMissingPost(t *testing.T) {
	svc, _, store := setup(t)

	_, err := svc.Add(context.Background(), 404, author, "hello", "")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	list, _ := store.List(context.Background(), 404)
	assert.Empty(t, list)
}

func TestAddRejectsEmptyText(t *testing.T) {
	svc, _, _ := setup(t)
	_, err := svc.Add(context.Background(), 1, author, "  ", "")
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestReplySnippet(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	parent, err := svc.Add(ctx, 1, author, strings.Repeat("é", 150), "")
	require.NoError(t, err)

	reply, err := svc.Add(ctx, 1, posts.Author{Id: "other", Username: "lurker"}, "so true", parent.Id)
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, parent.Id, reply.ReplyTo.CommentId)
	assert.Equal(t, "tea_spiller", reply.ReplyTo.Username)
	assert.Equal(t, MaxSnippetLength, len([]rune(reply.ReplyTo.Snippet)))

	_, err = svc.Add(ctx, 1, author, "to nobody", "missing")
	assert.ErrorIs(t, err, ErrReplyNotFound)
}

func TestCommentReactions(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	c, err := svc.Add(ctx, 1, author, "hot take", "")
	require.NoError(t, err)

	_, err = svc.SetReaction(ctx, 1, c.Id, "viewer", "🍕")
	assert.ErrorIs(t, err, ErrInvalidEmoji)

	c, err = svc.SetReaction(ctx, 1, c.Id, "viewer", "😂")
	require.NoError(t, err)
	assert.Equal(t, "😂", c.V0("viewer").MyReaction)

	c, err = svc.SetReaction(ctx, 1, c.Id, "viewer", "😂")
	require.NoError(t, err)
	assert.Empty(t, c.V0("viewer").MyReaction)
	assert.Empty(t, c.V0("viewer").Reactions)

	_, err = svc.SetReaction(ctx, 1, "missing", "viewer", "😂")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestPostDeleteCascades(t *testing.T) {
	svc, postStore, store := setup(t)
	ctx := context.Background()
	require.NoError(t, postStore.Insert(ctx, &posts.Post{Id: 2, Author: author}))

	_, err := svc.Add(ctx, 2, author, "bye", "")
	require.NoError(t, err)

	require.NoError(t, svc.posts.Delete(ctx, 2, author.Id))

	list, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListOldestFirst(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	base := time.Now()
	for i, text := range []string{"one", "two", "three"} {
		ts := base.Add(time.Duration(i) * time.Second)
		svc.SetClock(func() time.Time { return ts })
		_, err := svc.Add(ctx, 1, author, text, "")
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Text)
	assert.Equal(t, "three", list[2].Text)
}

func TestClearingAbsentReactionWritesNothing(t *testing.T) {
	postStore := posts.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, postStore.Insert(ctx, &posts.Post{Id: 1, Kind: posts.KindText, Content: "tea"}))

	bus := events.NewBus()
	store := NewMemoryStore()
	svc := NewService(store, posts.NewService(postStore, bus), bus)

	c, err := svc.Add(ctx, 1, author, "hot take", "")
	require.NoError(t, err)

	sub := bus.Subscribe(ctx)
	cleared, err := svc.SetReaction(ctx, 1, c.Id, "viewer", "")
	require.NoError(t, err)
	assert.Equal(t, c.Rev, cleared.Rev)

	stored, err := store.Get(ctx, 1, c.Id)
	require.NoError(t, err)
	assert.Equal(t, c.Rev, stored.Rev)

	select {
	case payload := <-sub:
		op, _, _ := events.Decode(payload)
		t.Fatalf("unexpected event %d", op)
	case <-time.After(100 * time.Millisecond):
	}

	// A real change still goes out
	_, err = svc.SetReaction(ctx, 1, c.Id, "viewer", "🔥")
	require.NoError(t, err)
	select {
	case payload := <-sub:
		op, _, err := events.Decode(payload)
		require.NoError(t, err)
		assert.Equal(t, events.OpUpdateComment, op)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
}

func TestFailedTransactionReturnsStoredComment(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, &Comment{Id: "c1", PostId: 1, Text: "tea"}))

	c, err := store.Transact(ctx, 1, "c1", func(c *Comment) error {
		c.Text = "half written"
		return ErrInvalidText
	})
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.Equal(t, "tea", c.Text)
	assert.Equal(t, int64(0), c.Rev)
}
