package comments

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Service struct {
	store     Store
	posts     *posts.Service
	publisher events.Publisher
	moderate  func(text string) error
	now       func() time.Time
}

func NewService(store Store, postSvc *posts.Service, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		posts:     postSvc,
		publisher: publisher,
		moderate:  func(string) error { return nil },
		now:       time.Now,
	}
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

// Add appends a comment to a post, optionally replying to another comment
// on the same post.
func (s *Service) Add(ctx context.Context, postId scoopid.ScoopID, author posts.Author, text string, replyToId string) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxTextLength {
		return Comment{}, ErrInvalidText
	}

	// Make sure post exists
	if _, err := s.posts.Get(ctx, postId); err != nil {
		return Comment{}, err
	}

	if err := s.moderate(text); err != nil {
		return Comment{}, err
	}

	c := Comment{
		Id:        uuid.New().String(),
		PostId:    postId,
		Text:      text,
		Author:    author,
		CreatedAt: s.now().UnixMilli(),
	}
	if replyToId != "" {
		parent, err := s.store.Get(ctx, postId, replyToId)
		if err != nil {
			if errors.Is(err, ErrCommentNotFound) {
				return Comment{}, ErrReplyNotFound
			}
			return Comment{}, err
		}
		c.ReplyTo = &ReplyRef{
			CommentId: parent.Id,
			Username:  parent.Author.Username,
			Snippet:   snippet(parent.Text),
		}
	}

	if err := s.store.Insert(ctx, &c); err != nil {
		return c, err
	}

	// The counter is a separate write, a failure here leaves it one short
	if _, err := s.posts.IncrementComments(ctx, postId); err != nil {
		logging.Log.WithFields(logrus.Fields{
			"post":    postId,
			"comment": c.Id,
		}).WithError(err).Warn("comment counter drifted")
	}

	s.emit(ctx, events.OpCreateComment, &CreateCommentEvent{Comment: c})

	return c, nil
}

// List returns the comments of a post, oldest first.
func (s *Service) List(ctx context.Context, postId scoopid.ScoopID) ([]Comment, error) {
	return s.store.List(ctx, postId)
}

func (s *Service) SetReaction(ctx context.Context, postId scoopid.ScoopID, commentId string, viewerId string, emoji string) (Comment, error) {
	if emoji != "" && !posts.ValidEmoji(emoji) {
		return Comment{}, ErrInvalidEmoji
	}

	changed := false
	c, err := s.store.Transact(ctx, postId, commentId, func(c *Comment) error {
		if c.Reactions == nil {
			c.Reactions = make(map[string]string)
		}
		removed, added := posts.ApplyReaction(c.Reactions, viewerId, emoji)
		changed = removed != "" || added != ""
		if !changed {
			return ErrNoChange
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCommentNotFound) {
			logging.Capture(err, "comment transaction failed", logrus.Fields{"post": postId, "comment": commentId})
		}
		return c, err
	}

	if changed {
		s.emit(ctx, events.OpUpdateComment, &UpdateCommentEvent{Comment: c})
	}

	return c, nil
}

// DeleteByPost removes every comment of a post.
func (s *Service) DeleteByPost(ctx context.Context, postId scoopid.ScoopID) (int64, error) {
	return s.store.DeleteByPost(ctx, postId)
}

func (s *Service) emit(ctx context.Context, op uint8, v interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, op, v); err != nil {
		logging.Capture(err, "failed publishing comment event", logrus.Fields{"op": op})
	}
}
