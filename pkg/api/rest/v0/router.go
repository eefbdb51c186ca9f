package v0_rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/config"
	"github.com/japap-media/server/pkg/media"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/profiles"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/sessions"
)

// Deps are the services the handlers run against. Uploader and Firewall may
// be nil.
type Deps struct {
	Config   *config.Config
	Posts    *posts.Service
	Comments *comments.Service
	Profiles *profiles.Service
	Signer   *sessions.Signer
	Reports  *safety.Reports
	Firewall *safety.Firewall
	Limiter  ratelimit.Limiter
	Uploader media.Uploader
}

type Handler struct {
	Deps
}

func Router(deps Deps) *chi.Mux {
	h := &Handler{Deps: deps}
	r := chi.NewRouter()

	r.Use(h.firewall)

	r.Mount("/", h.RootRouter())
	r.Mount("/session", h.SessionRouter())
	r.Mount("/me", h.MeRouter())
	r.Mount("/profiles", h.ProfilesRouter())
	r.Mount("/posts", h.PostsRouter())
	r.Mount("/media", h.MediaRouter())
	r.Mount("/admin", h.AdminRouter())

	// old endpoints
	r.Get("/home", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/posts?"+r.URL.RawQuery, http.StatusPermanentRedirect)
	})

	return r
}
