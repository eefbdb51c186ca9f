package media

import (
	"context"
	"io"
	"mime"
	"strings"
)

const (
	MaxImageSize int64 = 10 << 20
	MaxAudioSize int64 = 10 << 20
	MaxVideoSize int64 = 50 << 20
)

var allowedTypes = map[string]string{
	"image/jpeg": "image",
	"image/png":  "image",
	"image/gif":  "image",
	"image/webp": "image",

	"video/mp4":       "video",
	"video/webm":      "video",
	"video/quicktime": "video",

	"audio/mpeg": "audio",
	"audio/ogg":  "audio",
	"audio/wav":  "audio",
	"audio/webm": "audio",
	"audio/mp4":  "audio",
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
	"audio/mpeg":      ".mp3",
	"audio/ogg":       ".ogg",
	"audio/wav":       ".wav",
	"audio/webm":      ".weba",
	"audio/mp4":       ".m4a",
}

// Upload is a file ready to be sent to storage.
type Upload struct {
	Filename string
	Mime     string
	Size     int64
	Body     io.Reader
}

// ProgressFunc is called with the bytes sent so far and the total size.
type ProgressFunc func(sent int64, total int64)

type Uploader interface {
	Upload(ctx context.Context, u Upload, progress ProgressFunc) (string, error)
}

// KindOf maps a mime type to a post kind.
func KindOf(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", ErrUnsupportedType
	}
	kind, ok := allowedTypes[strings.ToLower(mediaType)]
	if !ok {
		return "", ErrUnsupportedType
	}
	return kind, nil
}

// Validate checks the mime type and size limits before anything is uploaded.
func Validate(mimeType string, size int64) (string, error) {
	kind, err := KindOf(mimeType)
	if err != nil {
		return "", err
	}

	limit := MaxImageSize
	switch kind {
	case "video":
		limit = MaxVideoSize
	case "audio":
		limit = MaxAudioSize
	}
	if size <= 0 || size > limit {
		return kind, ErrFileTooLarge
	}
	return kind, nil
}

func extension(mimeType string) string {
	mediaType, _, _ := mime.ParseMediaType(mimeType)
	return extensions[strings.ToLower(mediaType)]
}

type progressReader struct {
	r        io.Reader
	sent     int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}

func withProgress(u Upload, progress ProgressFunc) io.Reader {
	if progress == nil {
		return u.Body
	}
	return &progressReader{r: u.Body, total: u.Size, progress: progress}
}
