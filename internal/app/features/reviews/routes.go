package reviews

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin review-queue subrouter, mounted at /reviews.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("admin", "superadmin"))

		r.Get("/", h.ServeList)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.ServeDetail)
			r.Post("/approve", h.ServeApprove)
			r.Post("/reject", h.ServeReject)
		})
	})
	return r
}
