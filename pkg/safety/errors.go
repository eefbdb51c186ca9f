package safety

import (
	"errors"
	"fmt"
)

var (
	ErrContentRejected   = errors.New("content rejected")
	ErrInvalidReportType = errors.New("invalid report type")
	ErrInvalidReason     = errors.New("invalid report reason")
	ErrInvalidAddress    = errors.New("invalid network address")
	ErrBlockNotFound     = errors.New("network block not found")
)

// RejectedError names the moderation rule that matched.
type RejectedError struct {
	Rule string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("content rejected: %s", e.Rule)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrContentRejected
}
