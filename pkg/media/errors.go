package media

import "errors"

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported media type")
	ErrNoUploader      = errors.New("media uploads are not configured")
	ErrUploadFailed    = errors.New("media upload failed")
)
