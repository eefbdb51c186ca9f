package v0_rest

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/sirupsen/logrus"
)

func (h *Handler) AdminRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(h.admin)

	r.Post("/netblocks", h.createNetblock)
	r.Delete("/netblocks/{blockId}", h.deleteNetblock)

	return r
}

// admin checks the Admin-Token header. Admin routes are off without a
// configured token.
func (h *Handler) admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Admin-Token")
		if h.Config.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.Config.AdminToken)) != 1 {
			returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
			return
		}
		if h.Firewall == nil {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) createNetblock(w http.ResponseWriter, r *http.Request) {
	var body CreateNetblockReq
	if !decodeBody(w, r, &body) {
		return
	}

	entry, err := h.Firewall.CreateBlock(r.Context(), body.Address, body.Reason, body.ExpiresAt)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	logging.Log.WithFields(logrus.Fields{
		"block":   entry.Id,
		"address": entry.Address,
		"by":      r.RemoteAddr,
	}).Info("network blocked")

	returnData(w, http.StatusOK, NetblockResp{
		Id:        strconv.FormatInt(entry.Id, 10),
		Address:   entry.Address,
		ExpiresAt: entry.ExpiresAt,
	})
}

func (h *Handler) deleteNetblock(w http.ResponseWriter, r *http.Request) {
	blockId, err := scoopid.Parse(chi.URLParam(r, "blockId"))
	if err != nil {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		return
	}

	if err := h.Firewall.DeleteBlock(r.Context(), blockId); err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}
