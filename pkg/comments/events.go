package comments

type CreateCommentEvent struct {
	Comment Comment `msgpack:"comment"`
}

type UpdateCommentEvent struct {
	Comment Comment `msgpack:"comment"`
}
