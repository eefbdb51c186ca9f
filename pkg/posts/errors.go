package posts

import "errors"

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotAuthor        = errors.New("requester is not the author")
	ErrInvalidKind      = errors.New("invalid post kind")
	ErrInvalidContent   = errors.New("invalid post content")
	ErrInvalidEmoji     = errors.New("emoji not allowed")
	ErrTransactConflict = errors.New("too many conflicting writes")

	// ErrNoChange aborts a transaction without writing.
	ErrNoChange = errors.New("no change")
)
