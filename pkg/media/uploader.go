package media

import (
	"github.com/japap-media/server/pkg/config"
)

// NewUploader picks the upload backend from configuration. It returns
// ErrNoUploader when the chosen backend is missing its settings.
func NewUploader(cfg config.MediaConfig) (Uploader, error) {
	switch cfg.Backend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, ErrNoUploader
		}
		return NewS3Uploader(cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	default:
		if cfg.UploadURL == "" {
			return nil, ErrNoUploader
		}
		return NewHTTPUploader(cfg.UploadURL, cfg.UploadPreset), nil
	}
}
