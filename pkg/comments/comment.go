package comments

import (
	"strconv"
	"unicode/utf8"

	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/japap-media/server/pkg/structs"
)

const (
	MaxTextLength    = 1000
	MaxSnippetLength = 100
)

type ReplyRef struct {
	CommentId string `bson:"comment_id" msgpack:"comment_id"`
	Username  string `bson:"username" msgpack:"username"`
	Snippet   string `bson:"snippet" msgpack:"snippet"`
}

type Comment struct {
	Id        string          `bson:"_id" msgpack:"id"`
	PostId    scoopid.ScoopID `bson:"post_id" msgpack:"post_id"`
	Text      string          `bson:"text" msgpack:"text"`
	Author    posts.Author    `bson:"author" msgpack:"author"`
	CreatedAt int64           `bson:"created_at" msgpack:"created_at"`
	ReplyTo   *ReplyRef       `bson:"reply_to,omitempty" msgpack:"reply_to,omitempty"`

	Reactions map[string]string `bson:"reactions,omitempty" msgpack:"reactions,omitempty"`

	Rev int64 `bson:"rev" msgpack:"rev"`
}

func (c Comment) Clone() Comment {
	cp := c
	if c.ReplyTo != nil {
		ref := *c.ReplyTo
		cp.ReplyTo = &ref
	}
	if c.Reactions != nil {
		cp.Reactions = make(map[string]string, len(c.Reactions))
		for k, v := range c.Reactions {
			cp.Reactions[k] = v
		}
	}
	return cp
}

func (c *Comment) V0(viewerId string) structs.V0Comment {
	myReaction := ""
	if viewerId != "" {
		myReaction = c.Reactions[viewerId]
	}

	v0 := structs.V0Comment{
		Id:     c.Id,
		PostId: strconv.FormatInt(c.PostId, 10),
		Text:   c.Text,
		Author: structs.V0Author{
			Id:       c.Author.Id,
			Username: c.Author.Username,
			Avatar:   c.Author.Avatar,
		},
		CreatedAt:  c.CreatedAt,
		MyReaction: myReaction,
		Reactions:  posts.ReactionIndexes(posts.CountReactions(c.Reactions), myReaction),
	}
	if c.ReplyTo != nil {
		v0.ReplyTo = &structs.V0ReplyRef{
			CommentId: c.ReplyTo.CommentId,
			Username:  c.ReplyTo.Username,
			Snippet:   c.ReplyTo.Snippet,
		}
	}
	return v0
}

// snippet cuts text down to MaxSnippetLength runes.
func snippet(text string) string {
	if utf8.RuneCountInString(text) <= MaxSnippetLength {
		return text
	}
	return string([]rune(text)[:MaxSnippetLength])
}
