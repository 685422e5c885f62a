package events

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the event-management subrouter, mounted at /events.
// The schedule router is mounted here (outside the admin group) because
// coordinators manage their own event's schedule; it does its own
// per-event authorization.
func Routes(h *Handler, sm *auth.SessionManager, schedule chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Mount("/{eventID}/schedule", schedule)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("admin", "superadmin"))

		r.Get("/", h.ServeList)
		r.Get("/new", h.ServeNewForm)
		r.Post("/", h.ServeCreate)

		r.Get("/{eventID}/edit", h.ServeEditForm)
		r.Post("/{eventID}", h.ServeUpdate)
		r.Post("/{eventID}/visibility", h.ServeSetVisibility)
		r.Post("/{eventID}/registration", h.ServeSetRegistration)
		r.Post("/{eventID}/delete", h.ServeDelete)
	})
	return r
}
