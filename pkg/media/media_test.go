package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/japap-media/server/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	kind, err := Validate("image/png", 1024)
	require.NoError(t, err)
	assert.Equal(t, "image", kind)

	kind, err = Validate("video/mp4; codecs=avc1", 40<<20)
	require.NoError(t, err)
	assert.Equal(t, "video", kind)

	_, err = Validate("image/png", 11<<20)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = Validate("audio/mpeg", 11<<20)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = Validate("video/mp4", 51<<20)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = Validate("application/pdf", 10)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestHTTPUploader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scoops", r.FormValue("upload_preset"))
		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "pic.png", header.Filename)
		assert.Equal(t, []byte("pngdata"), data)

		json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.example.com/pic.png"})
	}))
	defer srv.Close()

	var lastSent int64
	u := NewHTTPUploader(srv.URL, "scoops")
	url, err := u.Upload(context.Background(), Upload{
		Filename: "pic.png",
		Mime:     "image/png",
		Size:     7,
		Body:     bytes.NewReader([]byte("pngdata")),
	}, func(sent, total int64) { lastSent = sent })
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pic.png", url)
	assert.Equal(t, int64(7), lastSent)
}

func TestHTTPUploaderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad preset"}}`))
	}))
	defer srv.Close()

	_, err := NewHTTPUploader(srv.URL, "").Upload(context.Background(), Upload{
		Filename: "a.mp3",
		Mime:     "audio/mpeg",
		Size:     1,
		Body:     bytes.NewReader([]byte("a")),
	}, nil)
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestNewUploader(t *testing.T) {
	_, err := NewUploader(config.MediaConfig{Backend: "http"})
	assert.ErrorIs(t, err, ErrNoUploader)

	_, err = NewUploader(config.MediaConfig{Backend: "s3"})
	assert.ErrorIs(t, err, ErrNoUploader)

	u, err := NewUploader(config.MediaConfig{Backend: "http", UploadURL: "https://upload.example.com"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPUploader{}, u)
}
