package profiles

import (
	"regexp"
	"strings"

	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/structs"
)

const (
	MinPseudonymLength = 3
	MaxPseudonymLength = 20
	MaxBioLength       = 280
)

var pseudonymStrip = regexp.MustCompile(`[^a-z0-9_]`)

type Profile struct {
	Id         string `bson:"_id" msgpack:"id"`
	Pseudonym  string `bson:"pseudonym" msgpack:"pseudonym"`
	Normalized string `bson:"normalized,omitempty" msgpack:"normalized,omitempty"`
	Avatar     string `bson:"avatar,omitempty" msgpack:"avatar,omitempty"`
	Bio        string `bson:"bio,omitempty" msgpack:"bio,omitempty"`
	Onboarded  bool   `bson:"onboarded" msgpack:"onboarded"`
	CreatedAt  int64  `bson:"created_at" msgpack:"created_at"`
}

// Patch holds the fields of an update. Nil fields are left untouched.
type Patch struct {
	Pseudonym *string
	Avatar    *string
	Bio       *string
}

// NormalizePseudonym lowercases the pseudonym and strips anything outside
// [a-z0-9_].
func NormalizePseudonym(pseudonym string) (string, error) {
	normalized := pseudonymStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(pseudonym)), "")
	if len(normalized) < MinPseudonymLength || len(normalized) > MaxPseudonymLength {
		return "", ErrInvalidPseudonym
	}
	return normalized, nil
}

// Author is the stub embedded in posts and comments.
func (p *Profile) Author() posts.Author {
	return posts.Author{
		Id:       p.Id,
		Username: p.Pseudonym,
		Avatar:   p.Avatar,
	}
}

func (p *Profile) V0() structs.V0Profile {
	return structs.V0Profile{
		Id:        p.Id,
		Pseudonym: p.Pseudonym,
		Avatar:    p.Avatar,
		Bio:       p.Bio,
		Onboarded: p.Onboarded,
		CreatedAt: p.CreatedAt,
	}
}

// AnonymousAuthor is used for viewers that never onboarded.
func AnonymousAuthor(viewerId string) posts.Author {
	short := viewerId
	if len(short) > 6 {
		short = short[:6]
	}
	return posts.Author{Id: viewerId, Username: "anon_" + short}
}
