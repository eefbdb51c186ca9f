package media

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type S3Uploader struct {
	bucket    string
	publicURL string
	uploader  *s3manager.Uploader
}

func NewS3Uploader(bucket string, region string, publicURL string) (*S3Uploader, error) {
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3Uploader{
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		uploader:  s3manager.NewUploader(sess),
	}, nil
}

func (s *S3Uploader) Key(u Upload) string {
	return "scoops/" + uuid.New().String() + extension(u.Mime)
}

func (s *S3Uploader) Upload(ctx context.Context, u Upload, progress ProgressFunc) (string, error) {
	key := s.Key(u)
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		ACL:         aws.String("public-read"),
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(u.Mime),
		Body:        withProgress(u, progress),
	})
	if err != nil {
		return "", errors.Wrap(err, "s3 upload")
	}

	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return out.Location, nil
}
