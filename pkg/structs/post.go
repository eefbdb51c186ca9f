package structs

type V0Post struct {
	Id         string            `json:"_id" msgpack:"_id"`
	Kind       string            `json:"kind" msgpack:"kind"`
	Content    string            `json:"content" msgpack:"content"`
	Caption    string            `json:"caption,omitempty" msgpack:"caption,omitempty"`
	Author     V0Author          `json:"author" msgpack:"author"`
	CreatedAt  int64             `json:"created_at" msgpack:"created_at"`
	ExpiresAt  int64             `json:"expires_at" msgpack:"expires_at"`
	Stats      V0PostStats       `json:"stats" msgpack:"stats"`
	Liked      bool              `json:"liked" msgpack:"liked"`
	Disliked   bool              `json:"disliked" msgpack:"disliked"`
	MyReaction string            `json:"my_reaction,omitempty" msgpack:"my_reaction,omitempty"`
	Reactions  []V0ReactionIndex `json:"reactions" msgpack:"reactions"`
}

type V0PostStats struct {
	Likes    int64 `json:"likes" msgpack:"likes"`
	Dislikes int64 `json:"dislikes" msgpack:"dislikes"`
	Comments int64 `json:"comments" msgpack:"comments"`
	Views    int64 `json:"views" msgpack:"views"`
}

type V0ReactionIndex struct {
	Emoji       string `json:"emoji" msgpack:"emoji"`
	Count       int64  `json:"count" msgpack:"count"`
	UserReacted bool   `json:"user_reacted" msgpack:"user_reacted"`
}
