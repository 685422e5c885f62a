package coordinator

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the coordinator dashboard subrouter, mounted at
// /coordinator.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("coordinator"))

		r.Get("/", h.ServeHome)
		r.Get("/details", h.ServeDetailsForm)
		r.Post("/details", h.ServeDetailsSubmit)
		r.Get("/schedule", h.ServeScheduleRedirect)
	})
	return r
}
