package publicapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Routes returns the public API subrouter, mounted at /api. The API is
// anonymous and read only, so CORS allows only GET from the configured
// origins (or any origin when none are configured).
func Routes(h *Handler, allowedOrigins []string) chi.Router {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/events", h.ServeEvents)
	r.Get("/events/{slug}", h.ServeEvent)
	r.Get("/schedules", h.ServeSchedules)
	return r
}
