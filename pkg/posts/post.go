package posts

import (
	"strconv"
	"time"

	"github.com/japap-media/server/pkg/scoopid"
	"github.com/japap-media/server/pkg/structs"
)

// Lifetime is how long a scoop stays in the feed before the sweeper deletes it.
const Lifetime = 7 * 24 * time.Hour

const (
	KindText  = "text"
	KindImage = "image"
	KindVideo = "video"
	KindAudio = "audio"
)

var Kinds = []string{KindText, KindImage, KindVideo, KindAudio}

type Author struct {
	Id       string `bson:"id" msgpack:"id"`
	Username string `bson:"username" msgpack:"username"`
	Avatar   string `bson:"avatar,omitempty" msgpack:"avatar,omitempty"`
}

type Stats struct {
	Likes    int64 `bson:"likes" msgpack:"likes"`
	Dislikes int64 `bson:"dislikes" msgpack:"dislikes"`
	Comments int64 `bson:"comments" msgpack:"comments"`
	Views    int64 `bson:"views" msgpack:"views"`
}

type Post struct {
	Id        scoopid.ScoopID `bson:"_id" msgpack:"id"`
	Kind      string          `bson:"kind" msgpack:"kind"`
	Content   string          `bson:"content" msgpack:"content"`
	Caption   string          `bson:"caption,omitempty" msgpack:"caption,omitempty"`
	Author    Author          `bson:"author" msgpack:"author"`
	CreatedAt int64           `bson:"created_at" msgpack:"created_at"`
	Stats     Stats           `bson:"stats" msgpack:"stats"`

	Votes          map[string]Vote   `bson:"votes,omitempty" msgpack:"votes,omitempty"`
	Reactions      map[string]string `bson:"reactions,omitempty" msgpack:"reactions,omitempty"`
	ReactionCounts map[string]int64  `bson:"reaction_counts,omitempty" msgpack:"reaction_counts,omitempty"`

	Rev int64 `bson:"rev" msgpack:"rev"`
}

func (p *Post) ExpiresAt() int64 {
	return p.CreatedAt + Lifetime.Milliseconds()
}

// Expired is true once the post is strictly older than Lifetime.
func (p *Post) Expired(now time.Time) bool {
	return now.UnixMilli()-p.CreatedAt > Lifetime.Milliseconds()
}

func (p Post) Clone() Post {
	c := p
	if p.Votes != nil {
		c.Votes = make(map[string]Vote, len(p.Votes))
		for k, v := range p.Votes {
			c.Votes[k] = v
		}
	}
	if p.Reactions != nil {
		c.Reactions = make(map[string]string, len(p.Reactions))
		for k, v := range p.Reactions {
			c.Reactions[k] = v
		}
	}
	if p.ReactionCounts != nil {
		c.ReactionCounts = make(map[string]int64, len(p.ReactionCounts))
		for k, v := range p.ReactionCounts {
			c.ReactionCounts[k] = v
		}
	}
	return c
}

// V0 renders the post for viewerId. viewerId may be empty for anonymous reads.
func (p *Post) V0(viewerId string) structs.V0Post {
	vote := p.VoteOf(viewerId)
	myReaction := ""
	if viewerId != "" {
		myReaction = p.Reactions[viewerId]
	}

	return structs.V0Post{
		Id:      strconv.FormatInt(p.Id, 10),
		Kind:    p.Kind,
		Content: p.Content,
		Caption: p.Caption,
		Author: structs.V0Author{
			Id:       p.Author.Id,
			Username: p.Author.Username,
			Avatar:   p.Author.Avatar,
		},
		CreatedAt: p.CreatedAt,
		ExpiresAt: p.ExpiresAt(),
		Stats: structs.V0PostStats{
			Likes:    p.Stats.Likes,
			Dislikes: p.Stats.Dislikes,
			Comments: p.Stats.Comments,
			Views:    p.Stats.Views,
		},
		Liked:      vote == VoteLike,
		Disliked:   vote == VoteDislike,
		MyReaction: myReaction,
		Reactions:  ReactionIndexes(p.ReactionCounts, myReaction),
	}
}

func ShareURL(frontendURL string, id scoopid.ScoopID) string {
	return frontendURL + "/scoop/" + strconv.FormatInt(id, 10)
}
