package structs

type V0Comment struct {
	Id         string            `json:"_id" msgpack:"_id"`
	PostId     string            `json:"post_id" msgpack:"post_id"`
	Text       string            `json:"text" msgpack:"text"`
	Author     V0Author          `json:"author" msgpack:"author"`
	CreatedAt  int64             `json:"created_at" msgpack:"created_at"`
	ReplyTo    *V0ReplyRef       `json:"reply_to,omitempty" msgpack:"reply_to,omitempty"`
	MyReaction string            `json:"my_reaction,omitempty" msgpack:"my_reaction,omitempty"`
	Reactions  []V0ReactionIndex `json:"reactions" msgpack:"reactions"`
}

type V0ReplyRef struct {
	CommentId string `json:"comment_id" msgpack:"comment_id"`
	Username  string `json:"username" msgpack:"username"`
	Snippet   string `json:"snippet" msgpack:"snippet"`
}
