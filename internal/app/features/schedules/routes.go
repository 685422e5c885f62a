package schedules

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the schedule-management subrouter, mounted at
// /events/{eventID}/schedule. The router carries no role middleware;
// every handler runs a gate check plus per-event authorization (admin
// or the event's own coordinator) through eventForRequest.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNewForm)
	r.Post("/", h.ServeCreate)

	r.Route("/{entryID}", func(r chi.Router) {
		r.Get("/edit", h.ServeEditForm)
		r.Post("/", h.ServeUpdate)
		r.Post("/delete", h.ServeDelete)
	})
	return r
}
