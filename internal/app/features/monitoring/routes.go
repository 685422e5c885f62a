package monitoring

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the monitoring subrouter, mounted at /monitoring.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("admin", "superadmin"))

		r.Get("/", h.Serve)
		r.Get("/requests.json", h.ServeRequestsJSON)
	})
	return r
}
