package events

const (
	OpCreatePost      uint8 = 16
	OpUpdatePost      uint8 = 17
	OpDeletePost      uint8 = 18
	OpBulkDeletePosts uint8 = 19

	OpCreateComment uint8 = 22
	OpUpdateComment uint8 = 23

	OpCreateBlock uint8 = 40
	OpDeleteBlock uint8 = 41
)

// IsPostOp reports whether op changes the post collection.
func IsPostOp(op uint8) bool {
	switch op {
	case OpCreatePost, OpUpdatePost, OpDeletePost, OpBulkDeletePosts:
		return true
	}
	return false
}
