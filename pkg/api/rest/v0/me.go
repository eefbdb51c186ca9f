package v0_rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/profiles"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/pkg/errors"
)

func (h *Handler) MeRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(h.authed)

	r.Get("/", h.getMe)
	r.Put("/", h.onboard)
	r.Patch("/", h.updateMe)

	return r
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	p, err := h.Profiles.Get(r.Context(), viewerId)
	if errors.Is(err, profiles.ErrProfileNotFound) {
		// Not onboarded yet
		p = profiles.Profile{Id: viewerId, Pseudonym: profiles.AnonymousAuthor(viewerId).Username}
	} else if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ProfileResp{V0Profile: p.V0()})
}

func (h *Handler) onboard(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	if h.ratelimited(w, r, "profile", ratelimit.ScopeViewer, viewerId) {
		return
	}

	var body OnboardReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.ratelimit(w, r, "profile", ratelimit.ScopeViewer, viewerId, 10, 5*time.Minute)

	p, err := h.Profiles.Onboard(r.Context(), viewerId, body.Pseudonym, body.Avatar, body.Bio)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ProfileResp{V0Profile: p.V0()})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	if h.ratelimited(w, r, "profile", ratelimit.ScopeViewer, viewerId) {
		return
	}

	var body UpdateProfileReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.ratelimit(w, r, "profile", ratelimit.ScopeViewer, viewerId, 10, 5*time.Minute)

	p, err := h.Profiles.Update(r.Context(), viewerId, profiles.Patch{
		Pseudonym: body.Pseudonym,
		Avatar:    body.Avatar,
		Bio:       body.Bio,
	})
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ProfileResp{V0Profile: p.V0()})
}
