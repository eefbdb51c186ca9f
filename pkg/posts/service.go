package posts

import (
	"context"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	MaxTextLength    = 2000
	MaxCaptionLength = 500

	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Cascade removes content hanging off a post.
type Cascade interface {
	DeleteByPost(ctx context.Context, postId scoopid.ScoopID) (int64, error)
}

type Service struct {
	store     Store
	publisher events.Publisher
	cascade   Cascade
	moderate  func(text string) error
	now       func() time.Time
}

func NewService(store Store, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		moderate:  func(string) error { return nil },
		now:       time.Now,
	}
}

func (s *Service) SetCascade(c Cascade) {
	s.cascade = c
}

func (s *Service) SetModerator(fn func(text string) error) {
	s.moderate = fn
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Store() Store {
	return s.store
}

func (s *Service) Create(ctx context.Context, author Author, kind string, content string, caption string) (Post, error) {
	content = strings.TrimSpace(content)
	caption = strings.TrimSpace(caption)
	if err := validateContent(kind, content, caption); err != nil {
		return Post{}, err
	}

	// Run moderation
	if err := s.moderate(content + "\n" + caption); err != nil {
		return Post{}, err
	}

	p := Post{
		Id:        scoopid.GenId(),
		Kind:      kind,
		Content:   content,
		Caption:   caption,
		Author:    author,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.store.Insert(ctx, &p); err != nil {
		return p, err
	}

	s.emit(ctx, events.OpCreatePost, &CreatePostEvent{Post: p})

	return p, nil
}

func validateContent(kind string, content string, caption string) error {
	if content == "" {
		return ErrInvalidContent
	}
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return ErrInvalidContent
	}

	switch kind {
	case KindText:
		if utf8.RuneCountInString(content) > MaxTextLength {
			return ErrInvalidContent
		}
	case KindImage, KindVideo, KindAudio:
		u, err := url.Parse(content)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return ErrInvalidContent
		}
	default:
		return ErrInvalidKind
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id scoopid.ScoopID) (Post, error) {
	return s.store.Get(ctx, id)
}

// List returns every post, newest first.
func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.store.All(ctx)
}

func (s *Service) Page(ctx context.Context, before scoopid.ScoopID, limit int64) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return s.store.Page(ctx, before, limit)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Delete removes a post on behalf of its author.
func (s *Service) Delete(ctx context.Context, id scoopid.ScoopID, requesterId string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Author.Id != requesterId {
		return ErrNotAuthor
	}

	if err := s.Remove(ctx, id); err != nil {
		return err
	}

	s.emit(ctx, events.OpDeletePost, &DeletePostEvent{PostId: id})

	return nil
}

// Remove deletes a post and its comments without announcing it.
func (s *Service) Remove(ctx context.Context, id scoopid.ScoopID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.cascade != nil {
		if _, err := s.cascade.DeleteByPost(ctx, id); err != nil {
			logging.Capture(err, "failed deleting comments of post", logrus.Fields{"post": id})
		}
	}

	return nil
}

func (s *Service) AnnounceBulkDelete(ctx context.Context, ids []scoopid.ScoopID) {
	if len(ids) == 0 {
		return
	}
	s.emit(ctx, events.OpBulkDeletePosts, &BulkDeletePostsEvent{PostIds: ids})
}

func (s *Service) ToggleLike(ctx context.Context, id scoopid.ScoopID, viewerId string) (Post, error) {
	return s.mutate(ctx, id, func(p *Post) error {
		p.ToggleVote(viewerId, VoteLike)
		return nil
	})
}

func (s *Service) ToggleDislike(ctx context.Context, id scoopid.ScoopID, viewerId string) (Post, error) {
	return s.mutate(ctx, id, func(p *Post) error {
		p.ToggleVote(viewerId, VoteDislike)
		return nil
	})
}

func (s *Service) SetReaction(ctx context.Context, id scoopid.ScoopID, viewerId string, emoji string) (Post, error) {
	if !ValidEmoji(emoji) {
		return Post{}, ErrInvalidEmoji
	}
	return s.mutate(ctx, id, func(p *Post) error {
		if !p.SetReaction(viewerId, emoji) {
			return ErrNoChange
		}
		return nil
	})
}

func (s *Service) ClearReaction(ctx context.Context, id scoopid.ScoopID, viewerId string) (Post, error) {
	return s.mutate(ctx, id, func(p *Post) error {
		if !p.SetReaction(viewerId, "") {
			return ErrNoChange
		}
		return nil
	})
}

// View counts a read of the post.
func (s *Service) View(ctx context.Context, id scoopid.ScoopID) (Post, error) {
	return s.store.Transact(ctx, id, func(p *Post) error {
		p.Stats.Views += 1
		return nil
	})
}

// IncrementComments bumps the denormalized comment counter. It is not
// written together with the comment itself and can drift from the real count.
func (s *Service) IncrementComments(ctx context.Context, id scoopid.ScoopID) (Post, error) {
	return s.mutate(ctx, id, func(p *Post) error {
		p.Stats.Comments += 1
		return nil
	})
}

// mutate runs fn in a transaction and announces the result, unless fn found
// nothing to change.
func (s *Service) mutate(ctx context.Context, id scoopid.ScoopID, fn TxFunc) (Post, error) {
	changed := false
	p, err := s.store.Transact(ctx, id, func(p *Post) error {
		err := fn(p)
		changed = err == nil
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			logging.Capture(err, "post transaction failed", logrus.Fields{"post": id})
		}
		return p, err
	}

	if changed {
		s.emit(ctx, events.OpUpdatePost, &UpdatePostEvent{Post: p})
	}

	return p, nil
}

func (s *Service) emit(ctx context.Context, op uint8, v interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, op, v); err != nil {
		logging.Capture(err, "failed publishing post event", logrus.Fields{"op": op})
	}
}
