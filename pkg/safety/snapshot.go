package safety

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/posts"
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot freezes reported content so moderators see it even after the post
// expired.
type Snapshot struct {
	Hash     string             `bson:"_id" msgpack:"-"`
	Posts    []posts.Post       `bson:"posts" msgpack:"posts"`
	Comments []comments.Comment `bson:"comments" msgpack:"comments"`
}

func NewSnapshot(post posts.Post, postComments []comments.Comment) (Snapshot, error) {
	s := Snapshot{
		Posts:    []posts.Post{post},
		Comments: postComments,
	}
	if s.Comments == nil {
		s.Comments = []comments.Comment{}
	}

	var err error
	s.Hash, err = s.GetHash()
	return s, err
}

func (s *Snapshot) GetHash() (string, error) {
	marshaled, err := msgpack.Marshal(s)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	if _, err := h.Write(marshaled); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil)), nil
}
