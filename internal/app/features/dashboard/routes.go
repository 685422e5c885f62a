package dashboard

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin dashboard subrouter, mounted at /dashboard.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("admin", "superadmin"))
		r.Get("/", h.Serve)
	})
	return r
}
