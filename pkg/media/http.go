package media

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/japap-media/server/pkg/logging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPUploader posts files to a media hosting endpoint as a multipart form
// and reads the public URL from the secure_url field of the response.
type HTTPUploader struct {
	url    string
	preset string
	client *http.Client
}

func NewHTTPUploader(url string, preset string) *HTTPUploader {
	return &HTTPUploader{
		url:    url,
		preset: preset,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (h *HTTPUploader) Upload(ctx context.Context, u Upload, progress ProgressFunc) (string, error) {
	body, w := io.Pipe()
	form := multipart.NewWriter(w)

	go func() {
		err := func() error {
			if h.preset != "" {
				if err := form.WriteField("upload_preset", h.preset); err != nil {
					return err
				}
			}
			part, err := form.CreateFormFile("file", u.Filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, withProgress(u, progress)); err != nil {
				return err
			}
			return form.Close()
		}()
		w.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, body)
	if err != nil {
		body.Close()
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := h.client.Do(req)
	if err != nil {
		body.Close()
		return "", errors.Wrap(err, "media upload request")
	}
	defer resp.Body.Close()

	var decoded struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.Wrap(err, "decode media upload response")
	}
	if resp.StatusCode >= 300 || decoded.SecureURL == "" {
		logging.Log.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"message": decoded.Error.Message,
		}).Warn("media host rejected upload")
		return "", ErrUploadFailed
	}

	return decoded.SecureURL, nil
}
