package systemusers

import (
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the user-management subrouter, mounted at /system-users.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("admin", "superadmin"))

		r.Get("/", h.ServeList)
		r.Get("/new", h.ServeNewForm)
		r.Post("/", h.ServeCreate)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/edit", h.ServeEditForm)
			r.Post("/", h.ServeUpdate)
			r.Post("/delete", h.ServeDelete)
		})
	})
	return r
}

// BootstrapRoutes returns the unauthenticated bootstrap subrouter,
// mounted at /api/system.
func BootstrapRoutes(b *BootstrapAPI) chi.Router {
	r := chi.NewRouter()
	r.Post("/admins", b.ServeCreateAdmin)
	return r
}
