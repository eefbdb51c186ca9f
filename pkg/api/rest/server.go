package rest

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	v0_rest "github.com/japap-media/server/pkg/api/rest/v0"
	"github.com/rs/cors"
)

func Router(deps v0_rest.Deps) *chi.Mux {
	r := chi.NewRouter()

	// CORS middleware
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"OPTIONS", "GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// IP address middleware
	realIPHeader := deps.Config.RealIPHeader
	r.Use(func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if realIPHeader != "" {
				r.RemoteAddr = r.Header.Get(realIPHeader)
			} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				r.RemoteAddr = host
			}
			h.ServeHTTP(w, r)
		})
	})

	// Mount routers
	r.Mount("/", v0_rest.Router(deps)) // default
	r.Mount("/v0", v0_rest.Router(deps))

	return r
}
