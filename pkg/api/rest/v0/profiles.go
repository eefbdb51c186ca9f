package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ProfilesRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/{pseudonym}", h.getProfile)

	return r
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profiles.GetByPseudonym(r.Context(), chi.URLParam(r, "pseudonym"))
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ProfileResp{V0Profile: p.V0()})
}
