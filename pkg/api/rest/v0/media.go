package v0_rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/media"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

func (h *Handler) MediaRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(h.authed)

	r.Post("/", h.uploadMedia)

	return r
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	if h.Uploader == nil {
		returnErr(w, http.StatusServiceUnavailable, ErrUploadsDisabled, nil)
		return
	}

	if h.ratelimited(w, r, "media", ratelimit.ScopeViewer, viewerId) {
		return
	}

	// Cap the request before parsing it
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxVideoSize+(1<<20))
	f, header, err := r.FormFile("file")
	if err != nil {
		returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{"file": "missing or too large"})
		return
	}
	defer f.Close()

	mime := header.Header.Get("Content-Type")
	kind, err := media.Validate(mime, header.Size)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	h.ratelimit(w, r, "media", ratelimit.ScopeViewer, viewerId, 10, 10*time.Minute)

	log := logging.Log.WithFields(logrus.Fields{"viewer": viewerId, "kind": kind, "size": header.Size})
	url, err := h.Uploader.Upload(r.Context(), media.Upload{
		Filename: header.Filename,
		Mime:     mime,
		Size:     header.Size,
		Body:     f,
	}, func(sent int64, total int64) {
		if sent == total {
			log.Debug("media upload streamed")
		}
	})
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, MediaResp{URL: url, Kind: kind})
}
