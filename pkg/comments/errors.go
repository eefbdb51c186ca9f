package comments

import "errors"

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrReplyNotFound    = errors.New("replied comment not found")
	ErrInvalidText      = errors.New("invalid comment text")
	ErrInvalidEmoji     = errors.New("emoji not allowed")
	ErrTransactConflict = errors.New("too many conflicting writes")

	// ErrNoChange aborts a transaction without writing.
	ErrNoChange = errors.New("no change")
)
