package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// NewRouter creates a new router with all routes configured.
// allowedOrigins configures browser CORS; an empty list allows any
// origin, which matches the single-user deployment default.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/supplements", h.Supplements)

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", h.GetProgress)
			r.Post("/", h.SaveProgress)
			r.MethodNotAllowed(methodNotAllowed("GET, POST"))
		})

		r.Route("/setup-user", func(r chi.Router) {
			r.Post("/", h.SetupUser)
			r.MethodNotAllowed(methodNotAllowed("POST"))
		})
	})

	return r
}

// methodNotAllowed responds 405 advertising the allowed methods.
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
