package posts

import (
	"github.com/japap-media/server/pkg/scoopid"
)

type CreatePostEvent struct {
	Post Post `msgpack:"post"`
}

type UpdatePostEvent struct {
	Post Post `msgpack:"post"`
}

type DeletePostEvent struct {
	PostId scoopid.ScoopID `msgpack:"post_id"`
}

type BulkDeletePostsEvent struct {
	PostIds []scoopid.ScoopID `msgpack:"post_ids"`
}
