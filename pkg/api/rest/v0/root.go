package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) RootRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", h.root)
	r.Get("/status", h.getStatus)
	r.Get("/statistics", h.getStatistics)
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {})

	return r
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	returnData(w, http.StatusOK, WelcomeResp{
		Error:    false,
		Name:     "japap",
		Frontend: h.Config.FrontendURL,
	})
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	blocked := false
	if h.Firewall != nil {
		blocked = h.Firewall.IsBlocked(r.RemoteAddr)
	}

	returnData(w, http.StatusOK, StatusResp{
		IPBlocked: blocked,
		Uploads:   h.Uploader != nil,
	})
}

func (h *Handler) getStatistics(w http.ResponseWriter, r *http.Request) {
	postCount, err := h.Posts.Count(r.Context())
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, StatisticsResp{
		PostCount: postCount,
	})
}
