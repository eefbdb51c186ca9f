package v0_rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/ratelimit"
)

func (h *Handler) SessionRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Post("/", h.createSession)
	r.With(h.authed).Get("/", h.getSession)

	return r
}

// createSession hands out a fresh anonymous viewer identity.
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	// IP Ratelimit
	if h.ratelimited(w, r, "session", ratelimit.ScopeIP, r.RemoteAddr) {
		return
	}
	h.ratelimit(w, r, "session", ratelimit.ScopeIP, r.RemoteAddr, 10, time.Hour)

	v0, err := h.Signer.V0(h.Signer.New())
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, SessionResp{V0Session: v0})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Signer.Parse(r.Header.Get("token"))
	if err != nil {
		returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
		return
	}

	v0, err := h.Signer.V0(sess)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, SessionResp{V0Session: v0})
}
